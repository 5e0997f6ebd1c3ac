// Command advlogic inspects, migrates, renders and serves logic graph
// documents of a game project.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
