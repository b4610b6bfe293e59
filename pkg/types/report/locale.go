package report

import (
	"fmt"
	"time"
)

// LocaleDate formats a date the way ko-KR locales print it, e.g. "2026. 10. 17.".
func LocaleDate(t time.Time) string {
	return fmt.Sprintf("%d. %d. %d.", t.Year(), int(t.Month()), t.Day())
}

// LocaleTime formats hours and minutes in the ko-KR 12h style, e.g. "오후 03:04".
func LocaleTime(t time.Time) string {
	period := "오전"
	hour := t.Hour()
	if hour >= 12 {
		period = "오후"
	}
	hour = hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%s %02d:%02d", period, hour, t.Minute())
}
