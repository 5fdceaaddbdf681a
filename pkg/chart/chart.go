package chart

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sherine-k/pickups/pkg/dispatch"
	"github.com/sherine-k/pickups/pkg/tally"
)

const (
	chartWidth = 80
	barChar    = "█"

	dateFormat  = "2006-01-02"
	clockFormat = "15:04:05"
)

// Generator generates ASCII charts
type Generator struct {
	width int
}

// NewGenerator creates a new chart generator
func NewGenerator() *Generator {
	return &Generator{
		width: chartWidth,
	}
}

// GenerateCountChart generates a horizontal bar chart of jobs per driver
func (g *Generator) GenerateCountChart(counts tally.Counts) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Driver Counts\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(counts) == 0 {
		sb.WriteString("No data to display\n")
		return sb.String()
	}

	entries := counts.Sorted()

	labelWidth := 0
	for _, e := range entries {
		if len(e.Driver) > labelWidth {
			labelWidth = len(e.Driver)
		}
	}

	maxCount := counts.Max()
	countWidth := len(fmt.Sprint(maxCount))
	barWidth := g.width - labelWidth - countWidth - 4
	if barWidth < 1 {
		barWidth = 1
	}

	for _, e := range entries {
		length := 0
		if maxCount > 0 {
			length = e.Count * barWidth / maxCount
		}
		if length == 0 && e.Count > 0 {
			length = 1
		}
		sb.WriteString(fmt.Sprintf("%-*s |%s %*d\n", labelWidth, e.Driver, strings.Repeat(barChar, length), countWidth, e.Count))
	}

	// X-axis
	sb.WriteString(strings.Repeat(" ", labelWidth+1))
	sb.WriteString("+")
	sb.WriteString(strings.Repeat("-", barWidth))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	sb.WriteString(fmt.Sprintf("0%*d (jobs)\n", barWidth-1, maxCount))
	sb.WriteString("\n")

	return sb.String()
}

// GenerateAssignmentTable generates the assignment table in run order
func (g *Generator) GenerateAssignmentTable(assignments []dispatch.Assignment, limit int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Assignments")
	if limit > 0 && limit < len(assignments) {
		sb.WriteString(fmt.Sprintf(" (showing first %d jobs)", limit))
	}
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	if len(assignments) == 0 {
		sb.WriteString("No jobs for this date\n\n")
		return sb.String()
	}

	locationWidth := len("PU Airport")
	for _, a := range assignments {
		if len(a.Location) > locationWidth {
			locationWidth = len(a.Location)
		}
	}

	sb.WriteString(fmt.Sprintf("%-12s  %-*s  %-8s  %s\n", "Pick-up Date", locationWidth, "PU Airport", "PU Time", "Driver"))
	sb.WriteString(fmt.Sprintf("%s  %s  %s  %s\n", strings.Repeat("-", 12), strings.Repeat("-", locationWidth), strings.Repeat("-", 8), strings.Repeat("-", 9)))

	displayCount := len(assignments)
	if limit > 0 && limit < displayCount {
		displayCount = limit
	}

	for i := 0; i < displayCount; i++ {
		a := assignments[i]
		sb.WriteString(fmt.Sprintf("%-12s  %-*s  %-8s  %s\n",
			a.PickupDate.Format(dateFormat),
			locationWidth,
			a.Location,
			a.PickupTime.Format(clockFormat),
			a.Driver))
	}

	if limit > 0 && limit < len(assignments) {
		sb.WriteString(fmt.Sprintf("\n... and %d more jobs\n", len(assignments)-limit))
	}

	sb.WriteString("\n")

	return sb.String()
}

// GenerateSummary generates a summary of the run
func (g *Generator) GenerateSummary(assignments []dispatch.Assignment, counts tally.Counts, poolSize int) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("Run Summary\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")

	unassigned := tally.Unassigned(assignments)

	sb.WriteString(fmt.Sprintf("Total Jobs: %d\n", len(assignments)))
	sb.WriteString(fmt.Sprintf("  - Assigned: %d\n", counts.Total()))
	sb.WriteString(fmt.Sprintf("  - Unassigned: %d\n", unassigned))
	sb.WriteString(fmt.Sprintf("Drivers Used: %d/%d\n", len(counts), poolSize))
	if len(counts) > 0 {
		sb.WriteString(fmt.Sprintf("  - Busiest Driver Load: %d\n", counts.Max()))
	}
	sb.WriteString("\n")

	return sb.String()
}

// WriteCSV writes the assignment table to w in CSV format
func WriteCSV(w io.Writer, assignments []dispatch.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Pick-up Date", "PU Airport", "PU Time", "Driver"}); err != nil {
		return err
	}
	for _, a := range assignments {
		rec := []string{
			a.PickupDate.Format(dateFormat),
			a.Location,
			a.PickupTime.Format(clockFormat),
			a.Driver,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
