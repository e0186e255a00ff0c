package analysis

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	corev1 "k8s.io/api/core/v1"
)

// Glyph is a single-character indicator and the colour it is printed in.
type Glyph struct {
	Symbol string
	Color  text.Color
}

var (
	GlyphEnabled  = Glyph{"✅", text.FgGreen}
	GlyphDisabled = Glyph{"⭕", text.Faint}
	GlyphReady    = Glyph{"✅", text.FgGreen}
	GlyphNotReady = Glyph{"❌", text.FgRed}
)

// ReadinessUnknown is printed when a pod reports no container statuses at all.
const ReadinessUnknown = "?"

// ServiceGlyph returns the indicator for a Couchbase service flag.
func ServiceGlyph(enabled bool) Glyph {
	if enabled {
		return GlyphEnabled
	}
	return GlyphDisabled
}

// ReadinessGlyphs renders one glyph per container, in container-status order.
func ReadinessGlyphs(ready []bool) string {
	if len(ready) == 0 {
		return ReadinessUnknown
	}
	var b strings.Builder
	for _, r := range ready {
		if r {
			b.WriteString(GlyphReady.Symbol)
		} else {
			b.WriteString(GlyphNotReady.Symbol)
		}
	}
	return b.String()
}

// ReadinessColors colours the readiness cell by its worst container.
func ReadinessColors(ready []bool) text.Colors {
	if len(ready) == 0 {
		return text.Colors{text.Faint}
	}
	for _, r := range ready {
		if !r {
			return text.Colors{GlyphNotReady.Color}
		}
	}
	return text.Colors{GlyphReady.Color}
}

// PhaseColors returns the display colors for a pod phase.
func PhaseColors(phase string) text.Colors {
	switch corev1.PodPhase(phase) {
	case corev1.PodRunning:
		return text.Colors{text.FgGreen}
	case corev1.PodPending:
		return text.Colors{text.FgYellow}
	case corev1.PodFailed:
		return text.Colors{text.Bold, text.FgRed}
	case corev1.PodSucceeded:
		return text.Colors{text.Faint}
	default:
		return text.Colors{text.FgMagenta}
	}
}

// AffinityColors highlights pods with no zone placement intent at all.
func AffinityColors(zoneAffinity string) text.Colors {
	switch zoneAffinity {
	case AffinityNone:
		return text.Colors{text.FgYellow}
	case AffinityAntiAffinity:
		return text.Colors{text.FgCyan}
	default:
		return nil
	}
}
