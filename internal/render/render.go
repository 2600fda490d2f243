// Package render writes views as terminal tables or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/xtxerr/launchboard/internal/dataset"
	"github.com/xtxerr/launchboard/internal/distribution"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/query"
)

// Printer formats numbers for display. Replace it to change the locale.
var Printer = message.NewPrinter(language.English)

// Mass formats a payload mass in kilograms with thousands separators.
func Mass(kg float64) string {
	return Printer.Sprint(number.Decimal(kg, number.MaxFractionDigits(1)))
}

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return Printer.Sprint(number.Decimal(n))
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// Table writes both views of v as text tables: the summary entries with
// their share, the distribution summaries and the scatter points.
func Table(w io.Writer, v *query.View) error {
	fmt.Fprintf(w, "%s\n", v.PieTitle)
	fmt.Fprintf(w, "payload %s – %s kg", Mass(v.Applied.Low), Mass(v.Applied.High))
	if v.Empty {
		fmt.Fprint(w, " (outside dataset bounds)")
	}
	fmt.Fprint(w, "\n\n")

	if len(v.Aggregate) == 0 {
		fmt.Fprint(w, "no launches\n\n")
	} else {
		total := v.Aggregate.Total()
		t := newTable(w, "Label", "Count", "Share")
		t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
		for _, e := range v.Aggregate {
			share := float64(e.Count) / float64(total) * 100
			t.Append([]string{e.Label, Count(int64(e.Count)), strconv.FormatFloat(share, 'f', 1, 64) + "%"})
		}
		t.SetFooter([]string{"Total", Count(int64(total)), ""})
		t.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n\n", v.ScatterTitle)
	if len(v.Distribution) > 0 {
		Distribution(w, v.Distribution)
		fmt.Fprintln(w)
	}
	Points(w, v.Projection)
	return nil
}

// Distribution writes payload summaries, one row per group.
func Distribution(w io.Writer, summaries []distribution.Summary) {
	t := newTable(w, "Group", "Launches", "Min", "Avg", "Max", "P50", "P90")
	for i := range summaries {
		s := &summaries[i]
		p50, p90 := "-", "-"
		if s.HasPercentiles() {
			p50, p90 = Mass(*s.P50), Mass(*s.P90)
		}
		t.Append([]string{s.Label, Count(s.Count), Mass(s.Min), Mass(s.Avg), Mass(s.Max), p50, p90})
	}
	t.Render()
}

// Points writes one row per scatter point, in projection order.
func Points(w io.Writer, points launch.ScatterProjection) {
	if len(points) == 0 {
		fmt.Fprint(w, "no points\n")
		return
	}

	t := newTable(w, "Flight", "Site", "Payload (kg)", "Outcome", "Booster")
	t.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})
	for i := range points {
		p := &points[i]
		flight := "-"
		if p.FlightNumber != nil {
			flight = strconv.Itoa(*p.FlightNumber)
		}
		outcome := launch.LabelFailure
		if p.Outcome == launch.Success.Numeric() {
			outcome = launch.LabelSuccess
		}
		t.Append([]string{flight, p.Site, Mass(p.PayloadMassKg), outcome, p.BoosterCategory})
	}
	t.Render()
}

// Options writes the site options and the payload slider.
func Options(w io.Writer, options []dataset.SiteOption, slider dataset.Slider) {
	t := newTable(w, "Value", "Label")
	for _, o := range options {
		t.Append([]string{o.Value, o.Label})
	}
	t.Render()

	marks := make([]int, 0, len(slider.Marks))
	for k := range slider.Marks {
		marks = append(marks, k)
	}
	sort.Ints(marks)

	fmt.Fprintf(w, "\npayload %s – %s kg, step %s, marks", Mass(slider.Min), Mass(slider.Max), Mass(slider.Step))
	for _, k := range marks {
		fmt.Fprintf(w, " %s", slider.Marks[k])
	}
	fmt.Fprintln(w)
}

// Rows writes an ad-hoc query result with columns in the given order.
func Rows(w io.Writer, columns []string, rows []map[string]any) {
	t := newTable(w, columns...)
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cell(row[c])
		}
		t.Append(cells)
	}
	t.SetCaption(true, Printer.Sprintf("%d rows", len(rows)))
	t.Render()
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
