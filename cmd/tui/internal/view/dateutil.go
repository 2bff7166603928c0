package view

import (
	"time"

	"github.com/MrJamesThe3rd/frontdesk/internal/calendar"
)

// Timeframe is a predefined or custom range of calendar days.
type Timeframe int

const (
	TimeframeToday     Timeframe = 0
	TimeframeThisWeek  Timeframe = 1
	TimeframeLastWeek  Timeframe = 2
	TimeframeThisMonth Timeframe = 3
	TimeframeLastMonth Timeframe = 4
	TimeframeCustom    Timeframe = 5
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeToday:
		return "Hoy"
	case TimeframeThisWeek:
		return "Esta semana"
	case TimeframeLastWeek:
		return "Semana pasada"
	case TimeframeThisMonth:
		return "Este mes"
	case TimeframeLastMonth:
		return "Mes pasado"
	case TimeframeCustom:
		return "Rango personalizado"
	}

	return "Desconocido"
}

// TimeframeToDateRange returns the inclusive first and last calendar day of
// tf relative to today. Weeks start on Monday.
func TimeframeToDateRange(tf Timeframe, today time.Time) (time.Time, time.Time) {
	today = calendar.Day(today)

	offset := int(today.Weekday())
	if offset == 0 {
		offset = 7
	}

	switch tf {
	case TimeframeThisWeek:
		return today.AddDate(0, 0, -offset+1), today
	case TimeframeLastWeek:
		end := today.AddDate(0, 0, -offset)
		return end.AddDate(0, 0, -6), end
	case TimeframeThisMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), today
	case TimeframeLastMonth:
		start := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}

	return today, today
}
