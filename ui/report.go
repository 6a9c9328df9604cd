package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gobandit/app"
	"gobandit/domain/run"
)

// RunReport writes a markdown report for one run. Peers are the other stored
// runs on the same sequence; with two or more the report adds a seed summary.
func RunReport(result *run.Result, peers []*run.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Run %s\n\n", result.ID)
	fmt.Fprintf(&b, "Sequence **%s**, seed `%d`, window %d.\n\n", result.Sequence, result.Seed, result.Window)

	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Rounds | %d |\n", result.Rounds)
	fmt.Fprintf(&b, "| Total reward | %.0f |\n", result.TotalReward)
	fmt.Fprintf(&b, "| Mean reward | %.4f |\n", result.MeanReward())
	fmt.Fprintf(&b, "| Pulls arm 0 / arm 1 | %d / %d |\n", result.PullsArm0, result.PullsArm1)
	fmt.Fprintf(&b, "| Leader switches | %d |\n", result.LeaderSwitches)
	fmt.Fprintf(&b, "| Detector resets | %d |\n", result.Resets)
	fmt.Fprintf(&b, "| Final leader | expert %d |\n", result.FinalLeader)
	fmt.Fprintf(&b, "| Duration | %d ms |\n", result.DurationMS)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Fingerprint: `%s`\n", result.Fingerprint)

	if len(peers) >= 2 {
		if summary, err := app.Summarize(result.Sequence, peers); err == nil {
			fmt.Fprintf(&b, "\n## Across %d stored runs\n\n", summary.Runs)
			b.WriteString("| Mean | Std dev | Min | P10 | Median | P90 | Max |\n|---|---|---|---|---|---|---|\n")
			fmt.Fprintf(&b, "| %.2f | %.2f | %.0f | %.0f | %.1f | %.0f | %.0f |\n",
				summary.Mean, summary.StdDev, summary.Min, summary.P10, summary.Median, summary.P90, summary.Max)
		}
	}

	return b.String()
}

// renderMarkdown converts a report to HTML with table support
func renderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
