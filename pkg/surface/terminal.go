package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

// TerminalRenderer renders reports as colored terminal output.
// Colors are dropped when NO_COLOR is set.
type TerminalRenderer struct{}

type palette struct {
	bold, dim, good, warn, bad lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	if noColor() {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.ANSI)
	}
	return palette{
		bold: r.NewStyle().Bold(true),
		dim:  r.NewStyle().Faint(true),
		good: r.NewStyle().Foreground(lipgloss.Color("2")),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		bad:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (p palette) label(l quality.Label) lipgloss.Style {
	switch l {
	case quality.LabelExcellent:
		return p.good
	case quality.LabelMedium:
		return p.warn
	default:
		return p.bad
	}
}

func (p palette) trend(t analysis.Trend) (string, lipgloss.Style) {
	switch t {
	case analysis.TrendUp:
		return "▲", p.good
	case analysis.TrendDown:
		return "▼", p.bad
	default:
		return "=", p.dim
	}
}

func (r *TerminalRenderer) RenderComparison(w io.Writer, report *ComparisonReport) error {
	p := newPalette(w)
	c := report.Comparison

	fmt.Fprintf(w, "%s\n\n", p.bold.Render(fmt.Sprintf("Comparison: %s → %s", c.File1, c.File2)))
	fmt.Fprintf(w, "Rows: %d → %d (%s)\n\n", c.Summary.File1Rows, c.Summary.File2Rows, signedInt(c.Summary.RowsDiff))

	if len(c.KPIsComparison) == 0 {
		fmt.Fprintln(w, "No common KPIs.")
		fmt.Fprintln(w)
	} else {
		width := 0
		for _, k := range c.KPIsComparison {
			if len(k.Column) > width {
				width = len(k.Column)
			}
		}

		fmt.Fprintln(w, "KPIs:")
		for _, k := range c.KPIsComparison {
			arrow, style := p.trend(k.Trend)
			pct := fmt.Sprintf("(%s%%)", signedFloat(k.ChangePct))
			if k.File1Total == 0 && k.File2Total != 0 {
				// Percentage is not meaningful from a zero baseline.
				pct = p.dim.Render("(new)")
			}
			fmt.Fprintf(w, "  %s %-*s  %12.2f → %-12.2f %s %s\n",
				style.Render(arrow), width, k.Column,
				k.File1Total, k.File2Total,
				style.Render(signedFloat(k.Change)), pct)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Alerts: %d → %d   Anomalies: %d → %d\n",
		len(c.Alerts1), len(c.Alerts2), len(c.Anomalies1), len(c.Anomalies2))
	fmt.Fprintf(w, "Quality: %s → %s\n\n", scoreText(p, report.Quality1), scoreText(p, report.Quality2))

	up, down := c.Tally()
	verdict := c.Verdict()
	vs := p.dim
	switch verdict {
	case analysis.VerdictBetter:
		vs = p.good
	case analysis.VerdictWorse:
		vs = p.bad
	}
	fmt.Fprintf(w, "Verdict: %s (%d improved, %d degraded)\n",
		p.bold.Inherit(vs).Render(string(verdict)), up, down)
	return nil
}

func (r *TerminalRenderer) RenderQuality(w io.Writer, report *QualityReport) error {
	p := newPalette(w)
	q := report.Quality

	fmt.Fprintf(w, "%s\n\n", p.bold.Render(fmt.Sprintf("Quality: %s", report.FileName)))
	fmt.Fprintf(w, "Score %s\n", scoreText(p, q))
	fmt.Fprintf(w, "Rows: %d   Columns: %d   Missing values: %d\n\n",
		report.Summary.TotalRows, report.Summary.TotalColumns, report.Summary.MissingValues)

	hasPenalties := false
	for _, pr := range q.Breakdown {
		if pr.Points == 0 {
			continue
		}
		if !hasPenalties {
			fmt.Fprintln(w, "Penalties:")
			hasPenalties = true
		}
		fmt.Fprintf(w, "  %s %s %s\n",
			p.bad.Render(fmt.Sprintf("(-%d)", pr.Points)),
			p.bold.Render(pr.Name),
			p.dim.Render(fmt.Sprintf("× %d", pr.Count)))
	}
	if !hasPenalties {
		fmt.Fprintln(w, "No penalties.")
	}
	fmt.Fprintln(w)

	if ins := report.Insights; ins != nil {
		header := "Insights"
		if ins.Domain != "" {
			header += " (" + ins.Domain + ")"
		}
		if ins.HealthScore != nil {
			header += fmt.Sprintf(", health %d/100", *ins.HealthScore)
		}
		fmt.Fprintln(w, header+":")
		for _, s := range ins.Strengths {
			fmt.Fprintf(w, "  %s %s\n", p.good.Render("+"), s)
		}
		for _, s := range ins.Weaknesses {
			fmt.Fprintf(w, "  %s %s\n", p.bad.Render("-"), s)
		}
		for _, line := range wrapText(ins.Conclusion, 70) {
			fmt.Fprintf(w, "  %s\n", p.dim.Render(line))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func scoreText(p palette, q quality.QualityScore) string {
	return p.label(q.Label).Render(fmt.Sprintf("%d/100 (%s)", q.Score, q.Label))
}

func signedInt(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func signedFloat(f float64) string {
	if f > 0 {
		return fmt.Sprintf("+%.2f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
