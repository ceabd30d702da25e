package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// BusinessCalendar answers whether a day is a business day for an exchange
// calendar from scmhub/calendar. Most economic releases follow the US
// federal schedule, which xnys tracks closely.
type BusinessCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar loads the calendar for a MIC code (ISO 10383), falling back to
// xnys and then to a plain Mon-Fri rule in New York time.
func GetCalendar(mic string) *BusinessCalendar {
	mic = strings.ToLower(strings.TrimSpace(mic))
	if mic == "" {
		mic = "xnys"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xnys")
	}

	if cal == nil {
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &BusinessCalendar{Fallback: true, Timezone: nyLoc}
	}

	return &BusinessCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (bc *BusinessCalendar) IsBusinessDay(date time.Time) bool {
	if bc.Timezone != nil {
		date = date.In(bc.Timezone)
	}

	if bc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return bc.Calendar.IsBusinessDay(date)
}
