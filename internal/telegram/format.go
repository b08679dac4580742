package telegram

import (
	"fmt"
	"html"
	"strings"
	"time"

	"hadi_poller/internal/model"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatRecord formats a record as an HTML Telegram message.
func FormatRecord(rec model.Record, loc *time.Location) string {
	number := rec.Number
	if number == "" {
		number = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Number : <code>%s</code>\n", html.EscapeString(number))
	fmt.Fprintf(&b, "Code   : <code>%s</code>\n", html.EscapeString(rec.OTP))
	fmt.Fprintf(&b, "Time   : <code>%s</code>", formatTime(rec.ReceivedAt, loc))
	if rec.Message != "" {
		fmt.Fprintf(&b, "\n\n<pre>%s</pre>", html.EscapeString(rec.Message))
	}
	return b.String()
}

// formatTime renders the record timestamp with its UTC offset. An unparsable
// timestamp is passed through unchanged.
func formatTime(raw string, loc *time.Location) string {
	t, err := time.ParseInLocation(timeLayout, raw, loc)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02 15:04:05 -0700")
}
