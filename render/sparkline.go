// Package render draws the message-volume chart in a terminal: a compact
// sparkline row for the trend plus an hour/count table for the data labels.
package render

import (
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

var levels = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders one single-series bar chart per call.
type Sparkline struct {
	out     io.Writer
	colours bool
}

func NewSparkline(out io.Writer, colours bool) *Sparkline {
	return &Sparkline{out: out, colours: colours}
}

// Render draws the counts as a block-glyph sparkline over the category
// labels, in the order received. The caller's order is the category axis;
// nothing is sorted here.
func (s *Sparkline) Render(categories []string, data []int) error {
	if len(categories) == 0 || len(categories) != len(data) {
		return fmt.Errorf("mismatched chart series: %d categories, %d points", len(categories), len(data))
	}

	maxCount := 0
	for _, count := range data {
		if count > maxCount {
			maxCount = count
		}
	}

	bars := make([]rune, len(data))
	for i, count := range data {
		level := 0
		if maxCount > 0 {
			level = count * (len(levels) - 1) / maxCount
		}
		bars[i] = levels[level]
	}

	header := fmt.Sprintf("Messages received, %s → %s", categories[0], categories[len(categories)-1])
	line := string(bars)
	if s.colours {
		header = color.Cyan.Sprint(header)
		line = color.Green.Sprint(line)
	}
	fmt.Fprintln(s.out, header)
	fmt.Fprintln(s.out, line)

	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{"Hour", "Messages"})
	for i, category := range categories {
		table.Append([]string{category, fmt.Sprintf("%d", data[i])})
	}
	table.Render()

	return nil
}
