package config

// Config is the top-level YAML structure of the editor configuration.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	CatalogPath string `yaml:"catalog_path"` // empty = built-in catalog
	ProjectDir  string `yaml:"project_dir"`

	Canvas CanvasConf `yaml:"canvas"`
	IDs    IDConf     `yaml:"ids"`
	Serve  ServeConf  `yaml:"serve"`
}

// CanvasConf holds the interaction settings passed to canvas controllers.
type CanvasConf struct {
	GridSnap          bool `yaml:"grid_snap"`
	GridSize          int  `yaml:"grid_size"`
	DragThreshold     int  `yaml:"drag_threshold"`
	DefaultNodeWidth  int  `yaml:"default_node_width"`
	DefaultNodeHeight int  `yaml:"default_node_height"`
}

// IDConf selects how new node ids are formed.
type IDConf struct {
	Style  string `yaml:"style"` // sequential | uuid
	Prefix string `yaml:"prefix"`
}

// ServeConf configures the inspection HTTP server.
type ServeConf struct {
	Addr           string `yaml:"addr"`
	WatchDocuments bool   `yaml:"watch_documents"`
}
