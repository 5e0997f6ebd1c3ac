package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NodesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advlogic_nodes_added_total",
		Help: "Total number of nodes added to graph stores.",
	})

	NodesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advlogic_nodes_removed_total",
		Help: "Total number of nodes removed from graph stores.",
	})

	EdgeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_edge_operations_total",
		Help: "Edge connect/disconnect attempts, labelled by operation and result.",
	}, []string{"op", "result"})

	Gestures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_gestures_total",
		Help: "Canvas gestures, labelled by kind and outcome (committed, click, abandoned, cancelled).",
	}, []string{"kind", "outcome"})

	DocumentsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_documents_loaded_total",
		Help: "Graph document loads, labelled by result (ok, missing, malformed, error).",
	}, []string{"result"})

	NodesDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_nodes_decoded_total",
		Help: "Node records seen while decoding, labelled by outcome (ok, migrated, generic, skipped).",
	}, []string{"outcome"})

	DocumentsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_documents_saved_total",
		Help: "Graph document saves, labelled by result.",
	}, []string{"result"})

	CatalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advlogic_catalog_reloads_total",
		Help: "Command catalog reloads, labelled by result.",
	}, []string{"result"})

	GraphNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "advlogic_workspace_graph_nodes",
		Help: "Nodes per loaded collection in the workspace.",
	}, []string{"collection"})
)
