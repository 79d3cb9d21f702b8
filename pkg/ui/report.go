package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"mediascrape/pkg/manifest"
)

// Disposition labels used in the scrape report
const (
	LabelStored       = "stored"
	LabelDeduplicated = "deduplicated"
	LabelSkipped      = "skipped"
	LabelIgnored      = "ignored"
	LabelOversized    = "oversized"
)

// Disposition names the terminal state an entry describes
func Disposition(e manifest.Entry) string {
	switch {
	case e.Path != nil && strings.HasPrefix(*e.Path, "../"):
		return LabelDeduplicated
	case e.Path != nil:
		return LabelStored
	case e.InferredType != "":
		return LabelSkipped
	case e.Size != nil:
		return LabelOversized
	default:
		return LabelIgnored
	}
}

// PrintReport prints one line per manifest entry followed by totals. A
// repeated hash within the page counts as deduplicated.
func PrintReport(outDir string, m *manifest.Manifest) {
	PrintHighlight("\n[SCRAPE COMPLETE]")
	PrintInfo("Output", outDir)
	PrintInfo("Source", m.Source)

	counts := make(map[string]int)
	seen := make(map[string]bool)
	var stored uint64
	for _, e := range m.Files {
		label := Disposition(e)
		if e.SHA256 != nil {
			if label == LabelStored && seen[*e.SHA256] {
				label = LabelDeduplicated
			}
			seen[*e.SHA256] = true
		}
		counts[label]++

		size := "-"
		if e.Size != nil {
			size = humanize.Bytes(uint64(*e.Size))
			if label == LabelStored {
				stored += uint64(*e.Size)
			}
		}

		target := e.URL
		if e.Path != nil {
			target = *e.Path
		}
		fmt.Fprintf(out, "  %s %s %s\n", colorFor(label)(fmt.Sprintf("%-12s", label)), Dim(fmt.Sprintf("%8s", size)), target)
	}

	PrintInfo("Entries", fmt.Sprintf("%d", len(m.Files)))
	PrintInfo("Stored", fmt.Sprintf("%d (%s)", counts[LabelStored], humanize.Bytes(stored)))
	for _, label := range []string{LabelDeduplicated, LabelSkipped, LabelIgnored, LabelOversized} {
		if counts[label] > 0 {
			PrintInfo(strings.ToUpper(label[:1])+label[1:], fmt.Sprintf("%d", counts[label]))
		}
	}
}

func colorFor(label string) func(string) string {
	switch label {
	case LabelStored:
		return Green
	case LabelDeduplicated:
		return Cyan
	case LabelOversized:
		return Red
	default:
		return Yellow
	}
}
