package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Format constants for the one-line "next" display.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatNameAndCountdown   = "name-and-countdown"
	FormatFull               = "full"
)

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string  // next prayer, e.g. "Asr"
	ShortName string  // e.g. "A"
	Active    string  // prayer whose window we are in
	Time      string  // e.g. "15:02" or "3:02 PM"
	Remaining string  // e.g. "2h 15m"
	Countdown string  // e.g. "2h 15m 4s"
	Hours     int     // whole hours remaining
	Minutes   int     // minutes after hours
	Progress  float64 // 0-100 through the active window
}

// FormatWindow renders a window result for a status line.
// timeFormat is "15:04" for 24h or "3:04 PM" for 12h. A mode containing
// "{{" is executed as a text/template over FormatData.
func FormatWindow(w WindowResult, mode string, timeFormat string) string {
	remaining := FormatRemaining(w.Remaining)
	timeStr := w.NextTime.Format(timeFormat)
	short := ShortNames[w.Next]

	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      w.Next,
			ShortName: short,
			Active:    w.Active,
			Time:      timeStr,
			Remaining: remaining,
			Countdown: w.Countdown(),
			Hours:     int(w.Remaining.Hours()),
			Minutes:   int(w.Remaining.Minutes()) % 60,
			Progress:  w.Progress,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", w.Next, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatNameAndCountdown:
		return fmt.Sprintf("%s in %s", w.Next, w.Countdown())
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", w.Next, timeStr, remaining)
	default:
		return fmt.Sprintf("%s %s", w.Next, timeStr)
	}
}

func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
