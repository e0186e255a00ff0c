package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amasotti/cbplace/internal/analysis"
	"github.com/amasotti/cbplace/internal/kube"
)

func testReport(version int) *analysis.Report {
	report := &analysis.Report{
		ContextName: "lab",
		Rows: []analysis.PodReportRow{{
			Namespace:     "couchbase",
			InstanceGroup: "cb1",
			NodeName:      "node-1",
			Zone:          "eu-west-1a",
			Size:          "m5.xlarge",
			PodName:       "cb-0000",
			Readiness:     []bool{true, false},
			Phase:         "Running",
			ZoneAffinity:  analysis.AffinityNone,
			Services:      analysis.ServiceFlags{Data: true},
		}},
	}
	if version == 2 {
		report.IncludeReadiness = true
		report.TrackUnused = true
		report.UnusedGroupPrefix = "cb"
		report.NodeMetricsAvailable = true
		report.Unused = []analysis.UnusedNode{
			{
				NodeRecord: kube.NodeRecord{Name: "node-2", Zone: "eu-west-1b", Size: "m5.xlarge", InstanceGroup: "cb2", Role: "cb2"},
				Usage:      kube.NodeUsage{CPU: 1500, Mem: 2048, Available: true},
			},
			{
				NodeRecord: kube.NodeRecord{Name: "node-3", Zone: "eu-west-1c", Size: "m5.xlarge", InstanceGroup: "cb2", Role: "cb2"},
			},
		}
	}
	return report
}

func render(t *testing.T, r Renderer, report *analysis.Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, report))
	return buf.String()
}

func lineContaining(t *testing.T, out, needle string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, needle) {
			return line
		}
	}
	t.Fatalf("no line containing %q in:\n%s", needle, out)
	return ""
}

func TestPlacementHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"ig", "node", "zone", "size", "pod", "phase", "desired zone", "data", "index", "query", "search"},
		placementHeaders(false))
	assert.Equal(t,
		[]string{"ig", "node", "zone", "size", "pod", "ready", "phase", "desired zone", "data", "index", "query", "search"},
		placementHeaders(true))
}

func TestTableRendererVersion1(t *testing.T) {
	out := render(t, &TableRenderer{NoColor: true}, testReport(1))

	header := lineContaining(t, out, "desired zone")
	assert.NotContains(t, header, "ready")
	assert.Contains(t, header, "search")

	row := lineContaining(t, out, "cb-0000")
	assert.Equal(t, 1, strings.Count(row, "✅"), "only the data column is enabled")
	assert.Equal(t, 3, strings.Count(row, "⭕"))
	assert.Contains(t, row, "Running")
	assert.Contains(t, row, "NONE")
	assert.NotContains(t, row, "\x1b[", "no ANSI codes with NoColor")

	assert.Contains(t, out, "found 1 total")
	assert.Contains(t, out, "tip: get pods on a node with:")
	assert.Contains(t, out, "--field-selector spec.nodeName=<nodename>")
	assert.NotContains(t, out, "WARNING")
}

func TestTableRendererVersion2(t *testing.T) {
	out := render(t, &TableRenderer{NoColor: true}, testReport(2))

	header := lineContaining(t, out, "desired zone")
	assert.Contains(t, header, "ready")

	row := lineContaining(t, out, "cb-0000")
	assert.Contains(t, row, "✅❌", "one glyph per container in status order")

	assert.Contains(t, out, "found 1 total")
	assert.Contains(t, out, `WARNING: found 2 potentially unused nodes in instance groups starting with "cb"`)
	assert.NotContains(t, out, "tip:")

	unused := lineContaining(t, out, "node-2 ")
	assert.Contains(t, unused, "1.50")
	assert.Contains(t, unused, "2Gi")
	assert.Contains(t, lineContaining(t, out, "node-3 "), "N/A")

	assert.Contains(t, out, "  kubectl get pods --all-namespaces -o wide --field-selector spec.nodeName=node-2\n")
	assert.Contains(t, out, "  kubectl get pods --all-namespaces -o wide --field-selector spec.nodeName=node-3\n")
}

func TestTableRendererNoUnusedNodes(t *testing.T) {
	report := testReport(2)
	report.Unused = nil

	out := render(t, &TableRenderer{NoColor: true}, report)
	assert.Contains(t, out, `no potentially unused nodes in instance groups starting with "cb"`)
	assert.NotContains(t, out, "WARNING")
}

func TestTableRendererEmptyReport(t *testing.T) {
	report := testReport(1)
	report.Rows = nil

	out := render(t, &TableRenderer{NoColor: true}, report)
	assert.Contains(t, out, "desired zone")
	assert.Contains(t, out, "found 0 total")
}

func TestTableRendererIsDeterministic(t *testing.T) {
	first := render(t, &TableRenderer{NoColor: true}, testReport(2))
	second := render(t, &TableRenderer{NoColor: true}, testReport(2))
	assert.Equal(t, first, second)
}

func TestTableRendererSavesMarkdown(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	r := &TableRenderer{NoColor: true, MarkdownDir: dir, now: func() time.Time { return ts }}

	render(t, r, testReport(2))

	pods, err := os.ReadFile(markdownPath(dir, "pods", "lab", ts))
	require.NoError(t, err)
	assert.Contains(t, string(pods), "# cbplace pods (lab)")
	assert.Contains(t, string(pods), "| cb-0000 |")

	unused, err := os.ReadFile(markdownPath(dir, "unused_nodes", "lab", ts))
	require.NoError(t, err)
	assert.Contains(t, string(unused), "| node-2 |")
}

func TestJSONRenderer(t *testing.T) {
	out := render(t, New("json", Options{}), testReport(2))

	var decoded struct {
		Context string `json:"context"`
		Pods    []struct {
			PodName   string `json:"podName"`
			Readiness []bool `json:"readiness"`
			Services  struct {
				Data  bool `json:"data"`
				Index bool `json:"index"`
			} `json:"services"`
		} `json:"pods"`
		UnusedNodes []struct {
			Name  string `json:"name"`
			Usage struct {
				CPU int64 `json:"cpuMillicores"`
			} `json:"usage"`
		} `json:"unusedNodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "lab", decoded.Context)
	require.Len(t, decoded.Pods, 1)
	assert.Equal(t, "cb-0000", decoded.Pods[0].PodName)
	assert.Equal(t, []bool{true, false}, decoded.Pods[0].Readiness)
	assert.True(t, decoded.Pods[0].Services.Data)
	assert.False(t, decoded.Pods[0].Services.Index)
	require.Len(t, decoded.UnusedNodes, 2)
	assert.Equal(t, "node-2", decoded.UnusedNodes[0].Name)
	assert.Equal(t, int64(1500), decoded.UnusedNodes[0].Usage.CPU)
}

func TestYAMLRenderer(t *testing.T) {
	out := render(t, New("YAML", Options{}), testReport(2))

	assert.Contains(t, out, "context: lab\n")
	assert.Contains(t, out, "podName: cb-0000")
	assert.Contains(t, out, "zoneAffinity: NONE")
	// NodeRecord fields are inlined into the unused entry.
	assert.Contains(t, out, "- name: node-2")
	assert.Contains(t, out, "instanceGroup: cb2")
}

func TestNewFallsBackToTable(t *testing.T) {
	r := New("", Options{NoColor: true, MarkdownDir: "out"})
	tr, ok := r.(*TableRenderer)
	require.True(t, ok)
	assert.True(t, tr.NoColor)
	assert.Equal(t, "out", tr.MarkdownDir)
}

func TestSanitizeContextName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "default"},
		{"lab", "lab"},
		{"arn:aws:eks:eu-west-1:123:cluster/prod", "arn_aws_eks_eu-west-1_123_cluster_prod"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := sanitizeContextName(tc.in); got != tc.want {
				t.Errorf("sanitizeContextName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
