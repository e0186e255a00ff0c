package analysis

import (
	corev1 "k8s.io/api/core/v1"

	"github.com/amasotti/cbplace/internal/kube"
)

// Zone affinity markers used when a pod has no explicit zone node selector.
const (
	AffinityAntiAffinity = "az pod antiaffinity"
	AffinityNone         = "NONE"
)

// Couchbase service kinds, in report column order.
const (
	ServiceData   = "data"
	ServiceIndex  = "index"
	ServiceQuery  = "query"
	ServiceSearch = "search"

	serviceLabelPrefix = "couchbase_service_"
	serviceEnabled     = "enabled"
)

// ServiceFlags records which Couchbase services a pod runs.
type ServiceFlags struct {
	Data   bool `json:"data" yaml:"data"`
	Index  bool `json:"index" yaml:"index"`
	Query  bool `json:"query" yaml:"query"`
	Search bool `json:"search" yaml:"search"`
}

// PodReportRow is one line of the placement report.
type PodReportRow struct {
	Namespace     string `json:"namespace" yaml:"namespace"`
	InstanceGroup string `json:"instanceGroup" yaml:"instanceGroup"`
	NodeName      string `json:"nodeName" yaml:"nodeName"`
	Zone          string `json:"zone" yaml:"zone"`
	Size          string `json:"size" yaml:"size"`
	PodName       string `json:"podName" yaml:"podName"`
	// Readiness has one entry per container status; empty means the pod reported none.
	Readiness    []bool       `json:"readiness" yaml:"readiness"`
	Phase        string       `json:"phase" yaml:"phase"`
	ZoneAffinity string       `json:"zoneAffinity" yaml:"zoneAffinity"`
	Services     ServiceFlags `json:"services" yaml:"services"`
}

// NewPodReportRow combines a pod with the node it is scheduled on. Node fields stay empty when the
// pod's node is not in the index.
func NewPodReportRow(pod *corev1.Pod, nodes map[string]kube.NodeRecord) PodReportRow {
	row := PodReportRow{
		Namespace:    pod.Namespace,
		NodeName:     pod.Spec.NodeName,
		PodName:      pod.Name,
		Readiness:    ContainerReadiness(pod),
		Phase:        string(pod.Status.Phase),
		ZoneAffinity: ZoneAffinity(pod),
		Services: ServiceFlags{
			Data:   IsServiceEnabled(pod.Labels, ServiceData),
			Index:  IsServiceEnabled(pod.Labels, ServiceIndex),
			Query:  IsServiceEnabled(pod.Labels, ServiceQuery),
			Search: IsServiceEnabled(pod.Labels, ServiceSearch),
		},
	}
	if n, ok := nodes[pod.Spec.NodeName]; ok {
		row.Zone = n.Zone
		row.Size = n.Size
		row.InstanceGroup = n.InstanceGroup
	}
	return row
}

// ContainerReadiness returns the ready flag of every container status in API order.
func ContainerReadiness(pod *corev1.Pod) []bool {
	if len(pod.Status.ContainerStatuses) == 0 {
		return nil
	}
	ready := make([]bool, 0, len(pod.Status.ContainerStatuses))
	for _, cs := range pod.Status.ContainerStatuses {
		ready = append(ready, cs.Ready)
	}
	return ready
}

// ZoneAffinity describes where a pod wants to run: its zone node selector value, else the
// anti-affinity marker when a required anti-affinity term spreads by zone, else AffinityNone.
func ZoneAffinity(pod *corev1.Pod) string {
	if zone, ok := pod.Spec.NodeSelector[kube.LabelZoneBeta]; ok {
		return zone
	}

	if pod.Spec.Affinity == nil || pod.Spec.Affinity.PodAntiAffinity == nil {
		return AffinityNone
	}
	for _, term := range pod.Spec.Affinity.PodAntiAffinity.RequiredDuringSchedulingIgnoredDuringExecution {
		if term.TopologyKey == kube.LabelZoneBeta {
			return AffinityAntiAffinity
		}
	}
	return AffinityNone
}

// IsServiceEnabled reports whether the couchbase_service_<kind> label is exactly "enabled".
func IsServiceEnabled(labels map[string]string, kind string) bool {
	return labels[serviceLabelPrefix+kind] == serviceEnabled
}
