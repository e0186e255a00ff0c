package analysis

import (
	"strings"

	"github.com/amasotti/cbplace/internal/kube"
)

// UnusedNodeSet tracks nodes of an instance-group family that no reported pod runs on.
// It only sees the pods of the configured targets, so a node busy with other workloads still
// counts as unused.
type UnusedNodeSet struct {
	nodes []kube.NodeRecord
}

// NewUnusedNodeSet seeds the set with every record whose instance group starts with prefix,
// keeping node-list order.
func NewUnusedNodeSet(records []kube.NodeRecord, prefix string) *UnusedNodeSet {
	s := &UnusedNodeSet{}
	for _, r := range records {
		if strings.HasPrefix(r.InstanceGroup, prefix) {
			s.nodes = append(s.nodes, r)
		}
	}
	return s
}

// MarkUsed removes the first member named nodeName. Unknown names are ignored.
func (s *UnusedNodeSet) MarkUsed(nodeName string) {
	for i, n := range s.nodes {
		if n.Name == nodeName {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Nodes returns the remaining members.
func (s *UnusedNodeSet) Nodes() []kube.NodeRecord {
	out := make([]kube.NodeRecord, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Len returns the number of remaining members.
func (s *UnusedNodeSet) Len() int {
	return len(s.nodes)
}
