package store

import (
	"fmt"
	"time"
)

// Fast is one logged day of Ramadan.
type Fast struct {
	Year     int       `db:"hijri_year" json:"year"`
	Day      int       `db:"day" json:"day"`
	Kept     bool      `db:"kept" json:"kept"`
	LoggedAt time.Time `db:"logged_at" json:"logged_at"`
}

// FastSummary totals the fasts logged for one Ramadan.
type FastSummary struct {
	Year   int    `json:"year"`
	Kept   int    `json:"kept"`
	Missed int    `json:"missed"`
	Days   []Fast `json:"days"`
}

// LogFast records whether the fast of Ramadan day of hijriYear was kept.
// Logging the same day again replaces the earlier entry.
func (s *Store) LogFast(hijriYear, day int, kept bool) error {
	if day < 1 || day > 30 {
		return fmt.Errorf("ramadan day must be between 1 and 30, got %d", day)
	}
	_, err := s.db.Exec(`
		INSERT INTO fasts (hijri_year, day, kept, logged_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(hijri_year, day) DO UPDATE SET
		kept = excluded.kept,
		logged_at = excluded.logged_at`, hijriYear, day, kept, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("logging fast %d/%d: %w", day, hijriYear, err)
	}
	return nil
}

// FastSummary returns every logged day of hijriYear's Ramadan.
func (s *Store) FastSummary(hijriYear int) (FastSummary, error) {
	summary := FastSummary{Year: hijriYear, Days: []Fast{}}
	err := s.db.Select(&summary.Days, `
		SELECT hijri_year, day, kept, logged_at
		FROM fasts
		WHERE hijri_year = ?
		ORDER BY day`, hijriYear)
	if err != nil {
		return FastSummary{}, fmt.Errorf("loading fasts for %d: %w", hijriYear, err)
	}
	for _, f := range summary.Days {
		if f.Kept {
			summary.Kept++
		} else {
			summary.Missed++
		}
	}
	return summary, nil
}
