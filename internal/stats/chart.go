package stats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/gerrardelliot83-create/floe/internal/model"
)

const (
	barRune             = "█"
	avgRune             = "┆"
	dayLabelLayout      = "Mon Jan 02"
	minBarWidth         = 10
	terminalWidthBackup = 80
	colorBar            = "\x1b[36m"
	colorAvg            = "\x1b[33m"
	colorReset          = "\x1b[0m"
)

// RenderFocusChart prints one horizontal bar per day, scaled to fit totalWidth.
// A zero totalWidth uses the terminal width. The moving average of the last
// window days is marked on each bar.
func RenderFocusChart(w io.Writer, days []model.DailyFocus, window, totalWidth int, forceColor bool) error {
	if len(days) == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	useColor := shouldUseColor(w, forceColor)

	values := make([]float64, len(days))
	maxMinutes := 0
	for i, d := range days {
		values[i] = float64(d.Minutes)
		if d.Minutes > maxMinutes {
			maxMinutes = d.Minutes
		}
	}
	avgs := MovingAverage(values, window)

	valueWidth := displayWidth(FormatMinutes(maxMinutes))
	barWidth := BarWidthFor(totalWidth, valueWidth)

	if _, err := fmt.Fprintln(w, "Daily Focus"); err != nil {
		return err
	}
	for i, d := range days {
		label := d.Date.In(time.UTC).Format(dayLabelLayout)
		bar := renderBar(d.Minutes, avgs[i], maxMinutes, barWidth, useColor)
		line := fmt.Sprintf("%s │ %s %s", label, bar, padCell(FormatMinutes(d.Minutes), valueWidth, true))
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	legend := fmt.Sprintf("%s focus minutes   %s %d-day average", barRune, avgRune, window)
	if _, err := fmt.Fprintln(w, legend); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor computes the bar area that fits next to the labels.
func BarWidthFor(totalWidth, valueWidth int) int {
	labelWidth := len(dayLabelLayout) + displayWidth(" │ ") + 1 + valueWidth
	width := totalWidth - labelWidth
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func renderBar(minutes int, avg float64, maxMinutes, width int, useColor bool) string {
	cells := make([]string, width)
	filled := scale(float64(minutes), maxMinutes, width)
	for i := range cells {
		if i < filled {
			cells[i] = barRune
		} else {
			cells[i] = " "
		}
	}
	mark := scale(avg, maxMinutes, width) - 1
	if mark >= 0 && mark < width && avg > 0 {
		cells[mark] = avgRune
	}
	if !useColor {
		return strings.Join(cells, "")
	}
	var b strings.Builder
	for i, c := range cells {
		switch {
		case i == mark && c == avgRune:
			b.WriteString(colorAvg + c + colorReset)
		case c == barRune:
			b.WriteString(colorBar + c + colorReset)
		default:
			b.WriteString(c)
		}
	}
	return b.String()
}

func scale(v float64, maxVal, width int) int {
	if maxVal <= 0 || v <= 0 {
		return 0
	}
	n := int(v / float64(maxVal) * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
