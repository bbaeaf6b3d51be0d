// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/bureau-foundation/hwcount/lib/measure"
)

// TextOptions controls text rendering.
type TextOptions struct {
	// Theme colors the output. Nil renders plain text.
	Theme *Theme

	// Width is the terminal width. Optional columns are dropped until
	// the table fits. Zero means unlimited.
	Width int
}

// TerminalTextOptions returns colored output sized to file when it is
// a terminal, and plain unlimited-width output otherwise.
func TerminalTextOptions(file *os.File) TextOptions {
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return TextOptions{}
	}
	options := TextOptions{Theme: &DefaultTheme}
	if width, _, err := term.GetSize(fd); err == nil {
		options.Width = width
	}
	return options
}

// column is one table column. Optional columns are dropped, last
// first, when the table is wider than TextOptions.Width.
type column struct {
	header   string
	cells    []string
	left     bool
	optional bool
}

func (c column) width() int {
	width := lipgloss.Width(c.header)
	for _, cell := range c.cells {
		width = max(width, lipgloss.Width(cell))
	}
	return width
}

const columnGap = "  "

// WriteText renders report as aligned text.
func WriteText(w io.Writer, report *Report, options TextOptions) error {
	st := newStyles(options.Theme)
	var out strings.Builder

	out.WriteString(st.title.Render("hwcount report"))
	out.WriteString(st.label.Render("  " + report.Tool))
	out.WriteByte('\n')

	field := func(label, value string) {
		out.WriteString(st.label.Render(fmt.Sprintf("%-12s", label)))
		out.WriteString(st.value.Render(value))
		out.WriteByte('\n')
	}
	field("created", report.CreatedAt.UTC().Format(time.RFC3339))
	field("host", describeHost(report))
	field("workload", describeWorkload(report))
	if fingerprint := report.Fingerprint(); fingerprint != "" {
		field("fingerprint", fingerprint)
	}

	for index, worker := range report.Workers {
		out.WriteByte('\n')
		if worker == nil {
			out.WriteString(st.failed.Render(fmt.Sprintf("worker %d: no result", index)))
			out.WriteByte('\n')
			continue
		}
		out.WriteString(st.header.Render(fmt.Sprintf("worker %d", index)))
		out.WriteString(st.label.Render(fmt.Sprintf("  wall %s  %s iterations",
			worker.Wall.Round(time.Microsecond), humanize.Comma(int64(len(worker.Iterations))))))
		out.WriteByte('\n')
		writeTable(&out, st, buildColumns(worker, report.Throughput()), options.Width)
	}

	if len(report.Errors) > 0 {
		out.WriteByte('\n')
		for _, message := range report.Errors {
			out.WriteString(st.failed.Render("error: " + message))
			out.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func describeHost(report *Report) string {
	host := report.Host
	parts := []string{}
	if host.CPUModel != "" {
		parts = append(parts, host.CPUModel)
	}
	if host.OnlineCPUs > 0 {
		parts = append(parts, fmt.Sprintf("%d CPUs", host.OnlineCPUs))
	}
	if host.KernelVersion != "" {
		parts = append(parts, "kernel "+host.KernelVersion)
	}
	if pmu, ok := host.CorePMU(); ok {
		name := pmu.Name
		if pmu.Model != "" {
			name += " (" + pmu.Model + ")"
		}
		parts = append(parts, "PMU "+name)
	}
	if report.Registers > 0 {
		parts = append(parts, fmt.Sprintf("%d registers", report.Registers))
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, ", ")
}

func describeWorkload(report *Report) string {
	description := report.Workload.Name
	if report.Workload.Size > 0 {
		description += " size " + humanize.Comma(report.Workload.Size)
	}
	description += fmt.Sprintf(", %s iterations", humanize.Comma(int64(report.Iterations)))
	if report.Warmup > 0 {
		description += fmt.Sprintf(" (%s warmup)", humanize.Comma(int64(report.Warmup)))
	}
	if len(report.Workers) > 1 {
		description += fmt.Sprintf(", %d workers", len(report.Workers))
	}
	return description
}

func buildColumns(result *measure.Result, throughput *Throughput) []column {
	events := len(result.Events)
	name := column{header: "EVENT", left: true, cells: make([]string, events)}
	total := column{header: "TOTAL", cells: make([]string, events)}
	mean := column{header: "MEAN/ITER", cells: make([]string, events)}
	median := column{header: "MEDIAN/ITER", cells: make([]string, events), optional: true}
	rate := column{header: "RATE", cells: make([]string, events), optional: true}

	means := result.Mean()
	medians := result.Median()
	for index, event := range result.Events {
		name.cells[index] = event
		total.cells[index] = humanize.Comma(result.Totals[index])
		mean.cells[index] = humanize.CommafWithDigits(means[index], 1)
		median.cells[index] = humanize.Comma(medians[index])
		rate.cells[index] = formatRate(result.Totals[index], result.Wall)
	}
	columns := []column{name, total, mean, median, rate}

	if throughput != nil {
		perEvent := column{header: strings.ToUpper(throughput.Unit()), cells: make([]string, events), optional: true}
		scaled := append([]float64(nil), means...)
		throughput.PerEventAll(scaled)
		for index, value := range scaled {
			perEvent.cells[index] = formatFloat(value)
		}
		columns = append(columns, perEvent)
	}
	return columns
}

func formatRate(total int64, wall time.Duration) string {
	if wall <= 0 {
		return "-"
	}
	return humanize.SIWithDigits(float64(total)/wall.Seconds(), 2, "/s")
}

func formatFloat(value float64) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return "-"
	}
	return humanize.CommafWithDigits(value, 3)
}

// writeTable drops optional columns from the right until the table
// fits width, then renders it.
func writeTable(out *strings.Builder, st styles, columns []column, width int) {
	widths := make([]int, len(columns))
	for index, col := range columns {
		widths[index] = col.width()
	}
	tableWidth := func() int {
		total := 2 // indent
		for index := range columns {
			total += widths[index] + len(columnGap)
		}
		return total
	}
	for width > 0 && tableWidth() > width {
		dropped := false
		for index := len(columns) - 1; index >= 0; index-- {
			if columns[index].optional {
				columns = append(columns[:index], columns[index+1:]...)
				widths = append(widths[:index], widths[index+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			break
		}
	}

	cell := func(style lipgloss.Style, text string, index int) string {
		style = style.Width(widths[index])
		if !columns[index].left {
			style = style.Align(lipgloss.Right)
		}
		return style.Render(text)
	}

	out.WriteString("  ")
	for index, col := range columns {
		if index > 0 {
			out.WriteString(columnGap)
		}
		out.WriteString(cell(st.header, col.header, index))
	}
	out.WriteByte('\n')

	out.WriteString("  ")
	out.WriteString(st.rule.Render(strings.Repeat("-", tableWidth()-2-len(columnGap))))
	out.WriteByte('\n')

	rows := len(columns[0].cells)
	for row := range rows {
		out.WriteString("  ")
		for index, col := range columns {
			if index > 0 {
				out.WriteString(columnGap)
			}
			style := st.value
			if index == 0 {
				style = st.event
			}
			out.WriteString(cell(style, col.cells[row], index))
		}
		out.WriteByte('\n')
	}
}
