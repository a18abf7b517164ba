// Package hijri converts between Gregorian dates and the Islamic calendar.
//
// Dates between 1356 and 1500 AH (March 1937 to November 2077) follow the
// Umm al-Qura calendar of Saudi Arabia. Outside that range the tabular
// calendar is used, which may differ by a day or two from sighting.
package hijri

import (
	"fmt"
	"time"

	ghijri "github.com/hablullah/go-hijri"
)

// Month is a Hijri month, 1 (Muharram) through 12 (Dhu al-Hijjah).
type Month int

const (
	Muharram Month = iota + 1
	Safar
	RabiAlAwwal
	RabiAlThani
	JumadaAlUla
	JumadaAlAkhirah
	Rajab
	Shaban
	Ramadan
	Shawwal
	DhuAlQadah
	DhuAlHijjah
)

var monthNames = [...]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Ula", "Jumada al-Akhirah", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

func (m Month) String() string {
	if m < Muharram || m > DhuAlHijjah {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m-1]
}

// Years covered by the Umm al-Qura table.
const (
	ummAlQuraFirst = 1356
	ummAlQuraLast  = 1500
)

// Date is a day in the Hijri calendar.
type Date struct {
	Year  int   `json:"year"`
	Month Month `json:"month"`
	Day   int   `json:"day"`
}

// String renders the date as "10 Ramadan 1446 AH".
func (d Date) String() string {
	return fmt.Sprintf("%d %s %d AH", d.Day, d.Month, d.Year)
}

// gregorian returns midnight UTC of the Gregorian day d falls on. The
// Umm al-Qura table also holds 1 Muharram 1501, so month lengths of 1500 AH
// are measured against it.
func gregorian(d Date, ummAlQura bool) time.Time {
	if ummAlQura {
		return ghijri.UmmAlQuraDate{
			Year: int64(d.Year), Month: int64(d.Month), Day: int64(d.Day),
		}.ToGregorian()
	}
	return ghijri.HijriDate{
		Year: int64(d.Year), Month: int64(d.Month), Day: int64(d.Day),
		Pattern: ghijri.Default,
	}.ToGregorian()
}

func inUmmAlQura(d Date) bool {
	return d.Year >= ummAlQuraFirst && d.Year <= ummAlQuraLast &&
		d.Month >= Muharram && d.Month <= DhuAlHijjah
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Round(time.Hour).Hours() / 24)
}

// MonthDays returns the number of days in month m of year.
func MonthDays(year int, m Month) int {
	next := Date{Year: year, Month: m + 1, Day: 1}
	if m == DhuAlHijjah {
		next = Date{Year: year + 1, Month: Muharram, Day: 1}
	}
	uq := inUmmAlQura(Date{Year: year, Month: m})
	return daysBetween(gregorian(Date{Year: year, Month: m, Day: 1}, uq), gregorian(next, uq))
}

// IsLeap reports whether year has 355 days.
func IsLeap(year int) bool {
	uq := inUmmAlQura(Date{Year: year, Month: Muharram})
	first := gregorian(Date{Year: year, Month: Muharram, Day: 1}, uq)
	next := gregorian(Date{Year: year + 1, Month: Muharram, Day: 1}, uq)
	return daysBetween(first, next) == 355
}

// Valid reports whether d names an existing day.
func (d Date) Valid() bool {
	return d.Year >= 1 && d.Month >= Muharram && d.Month <= DhuAlHijjah &&
		d.Day >= 1 && d.Day <= MonthDays(d.Year, d.Month)
}

// FromTime returns the Hijri date of t's civil date in t's location. Dates
// before the Hijri epoch give the zero Date.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	civil := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	if uq, err := ghijri.CreateUmmAlQuraDate(civil); err == nil {
		return Date{Year: int(uq.Year), Month: Month(uq.Month), Day: int(uq.Day)}
	}
	h, err := ghijri.CreateHijriDate(civil, ghijri.Default)
	if err != nil {
		return Date{}
	}
	return Date{Year: int(h.Year), Month: Month(h.Month), Day: int(h.Day)}
}

// ToTime returns midnight in loc of the Gregorian day d falls on.
func (d Date) ToTime(loc *time.Location) time.Time {
	y, m, day := gregorian(d, inUmmAlQura(d)).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// AddDays moves d by n days, which may be negative.
func (d Date) AddDays(n int) Date {
	return FromTime(d.ToTime(time.UTC).AddDate(0, 0, n))
}
