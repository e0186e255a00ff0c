package kube

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/amasotti/cbplace/internal/config"
)

// PodBatch holds the pods returned for one target, in API order.
type PodBatch struct {
	Target config.Target
	Pods   []corev1.Pod
}

// Inventory is the snapshot a report is built from.
type Inventory struct {
	Nodes   []corev1.Node
	Batches []PodBatch // same order as the requested targets

	NodeUsage            map[string]NodeUsage
	NodeMetricsAvailable bool
}

// FetchInventory takes the node snapshot first, then lists the pods of every target in target order.
// Node metrics are only requested when withNodeMetrics is set; they are fetched alongside the pod
// lists and their absence is never fatal.
func FetchInventory(ctx context.Context, clients *Clients, targets []config.Target, withNodeMetrics bool) (*Inventory, error) {
	nodes, err := clients.Core.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	log.Debug().Int("count", len(nodes.Items)).Msg("listed nodes")

	var (
		nodeMetrics      *metricsv1beta1.NodeMetricsList
		nodeMetricsAvail = withNodeMetrics
	)

	g, gctx := errgroup.WithContext(ctx)

	if withNodeMetrics {
		g.Go(func() error {
			var err error
			nodeMetrics, err = clients.Metrics.MetricsV1beta1().NodeMetricses().List(gctx, metav1.ListOptions{})
			if err != nil {
				log.Debug().Err(err).Msg("node metrics unavailable (metrics-server may not be installed)")
				nodeMetricsAvail = false
			}
			return nil
		})
	}

	batches := make([]PodBatch, 0, len(targets))
	g.Go(func() error {
		for _, target := range targets {
			list, err := clients.Core.CoreV1().Pods(target.Namespace).List(gctx, metav1.ListOptions{
				LabelSelector: target.LabelSelector,
			})
			if err != nil {
				return fmt.Errorf("failed to list pods in %s (%s): %w", target.Namespace, target.LabelSelector, err)
			}
			log.Debug().
				Str("namespace", target.Namespace).
				Str("selector", target.LabelSelector).
				Int("count", len(list.Items)).
				Msg("listed pods")
			batches = append(batches, PodBatch{Target: target, Pods: list.Items})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Inventory{
		Nodes:                nodes.Items,
		Batches:              batches,
		NodeUsage:            usageByNode(nodeMetrics),
		NodeMetricsAvailable: nodeMetricsAvail,
	}, nil
}
