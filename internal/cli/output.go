package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/khanglvm/geocalc/internal/analytics"
	"github.com/khanglvm/geocalc/internal/shapes"
	"github.com/khanglvm/geocalc/internal/storage"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorBorder  = lipgloss.Color("#16858E")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C7A84")
)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label:   lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1),
}

// formatter prints numbers with the configured precision.
type formatter struct {
	precision int
}

func (f formatter) num(v float64) string {
	return strconv.FormatFloat(v, 'f', f.precision, 64)
}

// resultLines lists the metrics of res in display order.
func (f formatter) resultLines(res shapes.Result) []string {
	var lines []string
	for _, p := range res.Params {
		lines = append(lines, fmt.Sprintf("%s %s", styles.Muted.Render(p.Name+":"), strconv.FormatFloat(p.Value, 'g', -1, 64)))
	}
	if res.Dimension == shapes.TwoD {
		lines = append(lines,
			styles.Label.Render("Area: ")+f.num(res.Area),
			styles.Label.Render("Perimeter: ")+f.num(res.Perimeter),
		)
	} else {
		lines = append(lines,
			styles.Label.Render("Volume: ")+f.num(res.Volume),
			styles.Label.Render("Surface area: ")+f.num(res.SurfaceArea),
		)
	}
	return lines
}

// resultBox renders res inside a bordered box.
func (f formatter) resultBox(res shapes.Result) string {
	title := styles.Title.Render(fmt.Sprintf("%s (%s)", res.Kind.Title(), res.Dimension))
	body := strings.Join(append([]string{title}, f.resultLines(res)...), "\n")
	return styles.Box.Render(body)
}

// statsReport renders aggregated statistics as text.
func (f formatter) statsReport(stats analytics.AggregatedStats, loc *time.Location) string {
	var b strings.Builder

	scope := "all time"
	if stats.WindowDays > 0 {
		scope = fmt.Sprintf("last %d days", stats.WindowDays)
	}
	fmt.Fprintln(&b, styles.Title.Render("Calculation statistics ("+scope+")"))

	if stats.TotalCalculations == 0 {
		fmt.Fprintln(&b, styles.Muted.Render("No calculations recorded yet."))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d in %d session(s)\n", styles.Label.Render("Total:"), stats.TotalCalculations, stats.Sessions)
	fmt.Fprintf(&b, "%s %s (%.0f%%)\n", styles.Label.Render("Most popular:"),
		stats.MostPopularShape.Title(), 100*stats.ShareOf(stats.MostPopularShape))
	fmt.Fprintf(&b, "%s 2D %d, 3D %d\n", styles.Label.Render("Dimensions:"),
		stats.DimensionFrequency[shapes.TwoD], stats.DimensionFrequency[shapes.ThreeD])
	if stats.DurationSamples > 0 {
		fmt.Fprintf(&b, "%s %s ms over %d sample(s)\n", styles.Label.Render("Average duration:"),
			f.num(stats.AverageDurationMs), stats.DurationSamples)
	}
	if hour := stats.BusiestHour(); hour >= 0 {
		fmt.Fprintf(&b, "%s %02d:00-%02d:59 (%s)\n", styles.Label.Render("Busiest hour:"), hour, hour, loc)
	}
	fmt.Fprintf(&b, "%s %s to %s\n", styles.Label.Render("Span:"),
		stats.FirstAt.In(loc).Format(time.DateTime), stats.LastAt.In(loc).Format(time.DateTime))

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, shapeTable(stats))

	if days := stats.Days(); len(days) > 0 {
		fmt.Fprintln(&b, styles.Label.Render("Per day:"))
		for _, day := range days {
			fmt.Fprintf(&b, "  %s  %d\n", day, stats.DayHistogram[day])
		}
	}

	if len(stats.Recent) > 0 {
		fmt.Fprintln(&b, styles.Label.Render("Recent:"))
		for _, rec := range stats.Recent {
			fmt.Fprintf(&b, "  %s\n", f.recordLine(rec, loc))
		}
	}
	return b.String()
}

// shapeTable renders per-shape counts, most frequent first.
func shapeTable(stats analytics.AggregatedStats) string {
	kinds := make([]shapes.Kind, 0, len(stats.ShapeFrequency))
	for k := range stats.ShapeFrequency {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		ci, cj := stats.ShapeFrequency[kinds[i]], stats.ShapeFrequency[kinds[j]]
		if ci != cj {
			return ci > cj
		}
		return kinds[i].String() < kinds[j].String()
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers("Shape", "Dim", "Count", "Share")
	for _, k := range kinds {
		t.Row(k.String(), k.Dimension().String(),
			strconv.Itoa(stats.ShapeFrequency[k]),
			fmt.Sprintf("%.1f%%", 100*stats.ShareOf(k)))
	}
	return t.Render()
}

// recordLine summarizes one stored record on a single line.
func (f formatter) recordLine(rec storage.CalculationRecord, loc *time.Location) string {
	names := rec.ShapeKind.ParamNames()
	params := make([]string, 0, len(names))
	for _, name := range names {
		params = append(params, fmt.Sprintf("%s=%g", name, rec.Parameters[name]))
	}

	var metrics []string
	if rec.Area != nil {
		label := "area"
		if rec.Dimension == shapes.ThreeD {
			label = "surface"
		}
		metrics = append(metrics, label+"="+f.num(*rec.Area))
	}
	if rec.Perimeter != nil {
		metrics = append(metrics, "perimeter="+f.num(*rec.Perimeter))
	}
	if rec.Volume != nil {
		metrics = append(metrics, "volume="+f.num(*rec.Volume))
	}

	return fmt.Sprintf("#%d %s %s %s -> %s",
		rec.ID,
		rec.CreatedAt.In(loc).Format(time.DateTime),
		rec.ShapeKind,
		strings.Join(params, " "),
		strings.Join(metrics, " "))
}
