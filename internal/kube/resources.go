package kube

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
)

// NodeUsage holds actual node consumption as reported by metrics-server.
type NodeUsage struct {
	CPU       int64   `json:"cpuMillicores" yaml:"cpuMillicores"`
	Mem       float64 `json:"memMiB" yaml:"memMiB"`
	Available bool    `json:"available" yaml:"available"`
}

// MillicoresFromQuantity converts a CPU Quantity to millicores.
func MillicoresFromQuantity(q resource.Quantity) int64 {
	return q.MilliValue()
}

// MiBFromQuantity converts a memory Quantity to MiB.
func MiBFromQuantity(q resource.Quantity) float64 {
	return float64(q.Value()) / (1024 * 1024)
}

// FormatMem formats a MiB value as "512Mi" or "1.5Gi".
func FormatMem(mib float64) string {
	if mib >= 1024 {
		gib := mib / 1024
		if gib == float64(int64(gib)) {
			return fmt.Sprintf("%dGi", int64(gib))
		}
		return fmt.Sprintf("%.1fGi", gib)
	}
	return fmt.Sprintf("%dMi", int64(mib))
}

// FormatCPU formats millicores as "250m" or "1.5" (cores) when >= 1000m.
func FormatCPU(millicores int64) string {
	if millicores == 0 {
		return "0"
	}
	if millicores < 1000 {
		return fmt.Sprintf("%dm", millicores)
	}
	cores := float64(millicores) / 1000
	if float64(int64(cores)) == cores {
		return fmt.Sprintf("%d", int64(cores))
	}
	return fmt.Sprintf("%.2f", cores)
}

// usageByNode indexes a node metrics list by node name.
func usageByNode(list *metricsv1beta1.NodeMetricsList) map[string]NodeUsage {
	usage := make(map[string]NodeUsage)
	if list == nil {
		return usage
	}
	for _, m := range list.Items {
		usage[m.Name] = NodeUsage{
			CPU:       MillicoresFromQuantity(m.Usage[corev1.ResourceCPU]),
			Mem:       MiBFromQuantity(m.Usage[corev1.ResourceMemory]),
			Available: true,
		}
	}
	return usage
}
