package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/amasotti/cbplace/internal/analysis"
	"github.com/amasotti/cbplace/internal/kube"
)

const inspectNodeCommand = "kubectl get pods --all-namespaces -o wide --field-selector spec.nodeName=%s"

// TableRenderer prints the report as aligned text tables.
type TableRenderer struct {
	NoColor bool
	// MarkdownDir, when set, also saves every table as a markdown file below it.
	MarkdownDir string

	now func() time.Time
}

// cellValue holds a text value and optional ANSI colors for console rendering.
type cellValue struct {
	text   string
	colors text.Colors
}

func cv(s string) cellValue                       { return cellValue{text: s} }
func cvColored(s string, c text.Colors) cellValue { return cellValue{text: s, colors: c} }

// simpleStyle draws a header rule and nothing else, like a plain column listing.
func simpleStyle() table.Style {
	style := table.StyleDefault
	style.Name = "StyleSimple"
	style.Format.Header = text.FormatDefault
	style.Options = table.Options{SeparateHeader: true}
	return style
}

// renderTable renders a table to w (with colors unless disabled) and returns a markdown string.
func (r *TableRenderer) renderTable(w io.Writer, title string, headers []string, rows [][]cellValue) string {
	headerRow := make(table.Row, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}

	// Console table
	console := table.NewWriter()
	console.SetOutputMirror(w)
	console.SetTitle(title)
	console.AppendHeader(headerRow)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			if !r.NoColor && len(cell.colors) > 0 {
				tr[i] = cell.colors.Sprint(cell.text)
			} else {
				tr[i] = cell.text
			}
		}
		console.AppendRow(tr)
	}
	console.SetStyle(simpleStyle())
	console.Render()

	// Markdown table (plain text)
	md := table.NewWriter()
	md.AppendHeader(headerRow)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell.text
		}
		md.AppendRow(tr)
	}
	return md.RenderMarkdown()
}

// Render prints the placement table, the pod count and, depending on the report mode, either the
// inspection tip or the unused-node warning.
func (r *TableRenderer) Render(w io.Writer, report *analysis.Report) error {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	ts := now()

	mdContent := r.renderPods(w, report)
	r.save("pods", report.ContextName, ts, mdContent)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "found %d total\n", len(report.Rows))

	if !report.TrackUnused {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "tip: get pods on a node with:\n\n  "+inspectNodeCommand+"\n", "<nodename>")
		return nil
	}

	fmt.Fprintln(w)
	if len(report.Unused) == 0 {
		fmt.Fprintf(w, "no potentially unused nodes in instance groups starting with %q\n", report.UnusedGroupPrefix)
		return nil
	}

	fmt.Fprintf(w, "WARNING: found %d potentially unused nodes in instance groups starting with %q\n",
		len(report.Unused), report.UnusedGroupPrefix)
	fmt.Fprintln(w)
	mdContent = r.renderUnused(w, report)
	r.save("unused_nodes", report.ContextName, ts, mdContent)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "check what is running on them with:\n\n")
	for _, n := range report.Unused {
		fmt.Fprintf(w, "  "+inspectNodeCommand+"\n", n.Name)
	}
	return nil
}

func placementHeaders(includeReadiness bool) []string {
	headers := []string{"ig", "node", "zone", "size", "pod"}
	if includeReadiness {
		headers = append(headers, "ready")
	}
	return append(headers, "phase", "desired zone", "data", "index", "query", "search")
}

func (r *TableRenderer) renderPods(w io.Writer, report *analysis.Report) string {
	title := fmt.Sprintf("Couchbase pods (%s)", report.ContextName)

	var rows [][]cellValue
	for _, row := range report.Rows {
		cells := []cellValue{
			cv(row.InstanceGroup),
			cv(row.NodeName),
			cv(row.Zone),
			cv(row.Size),
			cv(row.PodName),
		}
		if report.IncludeReadiness {
			cells = append(cells, cvColored(analysis.ReadinessGlyphs(row.Readiness), analysis.ReadinessColors(row.Readiness)))
		}
		cells = append(cells,
			cvColored(row.Phase, analysis.PhaseColors(row.Phase)),
			cvColored(row.ZoneAffinity, analysis.AffinityColors(row.ZoneAffinity)),
			cv(analysis.ServiceGlyph(row.Services.Data).Symbol),
			cv(analysis.ServiceGlyph(row.Services.Index).Symbol),
			cv(analysis.ServiceGlyph(row.Services.Query).Symbol),
			cv(analysis.ServiceGlyph(row.Services.Search).Symbol),
		)
		rows = append(rows, cells)
	}

	return r.renderTable(w, title, placementHeaders(report.IncludeReadiness), rows)
}

func naCell() cellValue {
	return cvColored("N/A", text.Colors{text.Faint})
}

func (r *TableRenderer) renderUnused(w io.Writer, report *analysis.Report) string {
	title := fmt.Sprintf("Potentially unused nodes (%s)", report.ContextName)
	headers := []string{"ig", "node", "zone", "size", "cpu actual", "mem actual"}

	var rows [][]cellValue
	for _, n := range report.Unused {
		cpuCell, memCell := naCell(), naCell()
		if report.NodeMetricsAvailable && n.Usage.Available {
			cpuCell = cv(kube.FormatCPU(n.Usage.CPU))
			memCell = cv(kube.FormatMem(n.Usage.Mem))
		}
		rows = append(rows, []cellValue{
			cvColored(n.InstanceGroup, text.Colors{text.FgYellow}),
			cvColored(n.Name, text.Colors{text.FgYellow}),
			cv(n.Zone),
			cv(n.Size),
			cpuCell,
			memCell,
		})
	}

	return r.renderTable(w, title, headers, rows)
}

func (r *TableRenderer) save(name, contextName string, ts time.Time, md string) {
	if r.MarkdownDir == "" {
		return
	}
	saveMarkdownFile(r.MarkdownDir, name, contextName, ts, md)
}
