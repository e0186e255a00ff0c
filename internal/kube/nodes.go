package kube

import (
	corev1 "k8s.io/api/core/v1"
)

// Unknown is used for node fields whose label is absent.
const Unknown = "unknown"

// Node label keys read by the report. Only these keys are consulted; GA equivalents such as
// topology.kubernetes.io/zone are ignored.
const (
	LabelInstanceTypeBeta = "beta.kubernetes.io/instance-type"
	LabelZoneBeta         = "failure-domain.beta.kubernetes.io/zone"
	LabelInstanceGroup    = "node.kubernetes.io/instancegroup"
)

// NodeRecord is the flattened node metadata the placement report joins pods against.
type NodeRecord struct {
	Name          string `json:"name" yaml:"name"`
	Zone          string `json:"zone" yaml:"zone"`
	Size          string `json:"size" yaml:"size"`
	InstanceGroup string `json:"instanceGroup" yaml:"instanceGroup"`
	// Role is read from the instance-group label as well, so it always equals InstanceGroup.
	Role string `json:"role" yaml:"role"`
}

// NewNodeRecord builds a NodeRecord from a node's labels.
func NewNodeRecord(node *corev1.Node) NodeRecord {
	labels := node.Labels
	return NodeRecord{
		Name:          node.Name,
		Zone:          labelOrUnknown(labels, LabelZoneBeta),
		Size:          labelOrUnknown(labels, LabelInstanceTypeBeta),
		InstanceGroup: labelOrUnknown(labels, LabelInstanceGroup),
		Role:          labelOrUnknown(labels, LabelInstanceGroup),
	}
}

// NodeRecords converts a node list, keeping the API order.
func NodeRecords(nodes []corev1.Node) []NodeRecord {
	records := make([]NodeRecord, 0, len(nodes))
	for i := range nodes {
		records = append(records, NewNodeRecord(&nodes[i]))
	}
	return records
}

// IndexNodes keys records by node name. When two records share a name the first one wins.
func IndexNodes(records []NodeRecord) map[string]NodeRecord {
	index := make(map[string]NodeRecord, len(records))
	for _, r := range records {
		if _, ok := index[r.Name]; !ok {
			index[r.Name] = r
		}
	}
	return index
}

func labelOrUnknown(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok {
		return v
	}
	return Unknown
}
