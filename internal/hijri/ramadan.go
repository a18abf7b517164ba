package hijri

import "time"

// RamadanInfo describes where a day falls relative to Ramadan.
type RamadanInfo struct {
	Today Date `json:"today"`
	// Active is true during Ramadan; Day is then the day of the fast.
	Active bool `json:"active"`
	Day    int  `json:"day,omitempty"`
	// DaysLeft is the number of days remaining in Ramadan, counting today.
	DaysLeft int `json:"days_left,omitempty"`
	// DaysUntil is the number of days until the next 1 Ramadan when not active.
	DaysUntil int       `json:"days_until,omitempty"`
	Start     time.Time `json:"start"`
}

// RamadanStatus reports the Ramadan state of t's civil date.
func RamadanStatus(t time.Time) RamadanInfo {
	today := FromTime(t)
	info := RamadanInfo{Today: today}

	if today.Month == Ramadan {
		start := Date{Year: today.Year, Month: Ramadan, Day: 1}
		info.Active = true
		info.Day = today.Day
		info.DaysLeft = MonthDays(today.Year, Ramadan) - today.Day + 1
		info.Start = start.ToTime(t.Location())
		return info
	}

	year := today.Year
	if today.Month > Ramadan {
		year++
	}
	start := Date{Year: year, Month: Ramadan, Day: 1}
	info.Start = start.ToTime(t.Location())
	info.DaysUntil = daysBetween(civilDay(t), start.ToTime(time.UTC))
	return info
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
