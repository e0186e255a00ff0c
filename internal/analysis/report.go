package analysis

import (
	"github.com/amasotti/cbplace/internal/config"
	"github.com/amasotti/cbplace/internal/kube"
)

// UnusedNode is a member of the unused-node warning with its current usage, when known.
type UnusedNode struct {
	kube.NodeRecord `yaml:",inline"`
	Usage           kube.NodeUsage `json:"usage" yaml:"usage"`
}

// Report is the complete result of one run, ready to render.
type Report struct {
	ContextName string `json:"context" yaml:"context"`

	IncludeReadiness  bool   `json:"includeReadiness" yaml:"includeReadiness"`
	TrackUnused       bool   `json:"trackUnused" yaml:"trackUnused"`
	UnusedGroupPrefix string `json:"unusedGroupPrefix,omitempty" yaml:"unusedGroupPrefix,omitempty"`

	Rows   []PodReportRow `json:"pods" yaml:"pods"`
	Unused []UnusedNode   `json:"unusedNodes,omitempty" yaml:"unusedNodes,omitempty"`

	NodeMetricsAvailable bool `json:"nodeMetricsAvailable" yaml:"nodeMetricsAvailable"`
}

// BuildReport joins the pods of every batch against the node snapshot, in batch order. A pod
// returned by more than one target is reported once per target.
func BuildReport(inv *kube.Inventory, cfg *config.Config) *Report {
	records := kube.NodeRecords(inv.Nodes)
	index := kube.IndexNodes(records)

	report := &Report{
		IncludeReadiness:     cfg.IncludeReadiness,
		TrackUnused:          cfg.TrackUnused,
		NodeMetricsAvailable: inv.NodeMetricsAvailable,
		Rows:                 []PodReportRow{},
	}

	var unused *UnusedNodeSet
	if cfg.TrackUnused {
		report.UnusedGroupPrefix = cfg.UnusedGroupPrefix
		unused = NewUnusedNodeSet(records, cfg.UnusedGroupPrefix)
	}

	for _, batch := range inv.Batches {
		for i := range batch.Pods {
			row := NewPodReportRow(&batch.Pods[i], index)
			report.Rows = append(report.Rows, row)
			if unused != nil {
				unused.MarkUsed(row.NodeName)
			}
		}
	}

	if unused != nil {
		report.Unused = make([]UnusedNode, 0, unused.Len())
		for _, n := range unused.Nodes() {
			report.Unused = append(report.Unused, UnusedNode{NodeRecord: n, Usage: inv.NodeUsage[n.Name]})
		}
	}
	return report
}
