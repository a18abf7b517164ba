package store

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// JuzCount is the number of parts a full reading of the Quran is divided into.
const JuzCount = 30

// KhatmStatus summarises the open reading cycle.
type KhatmStatus struct {
	// Cycle is the 1-based number of the open cycle.
	Cycle int `json:"cycle"`
	// Juz lists the parts read in the open cycle, ascending.
	Juz       []int   `json:"juz"`
	Percent   float64 `json:"percent"`
	Completed int     `json:"completed"`
}

// Remaining lists the parts not yet read in the open cycle.
func (k KhatmStatus) Remaining() []int {
	read := make(map[int]bool, len(k.Juz))
	for _, j := range k.Juz {
		read[j] = true
	}
	var out []int
	for j := 1; j <= JuzCount; j++ {
		if !read[j] {
			out = append(out, j)
		}
	}
	return out
}

// openCycle returns the id of the cycle without completed_at, creating one
// when every cycle is complete.
func openCycle(tx *sqlx.Tx) (int64, error) {
	var ids []int64
	if err := tx.Select(&ids, `SELECT id FROM khatm_cycles WHERE completed_at IS NULL ORDER BY id DESC LIMIT 1`); err != nil {
		return 0, fmt.Errorf("finding open khatm cycle: %w", err)
	}
	if len(ids) > 0 {
		return ids[0], nil
	}
	res, err := tx.Exec(`INSERT INTO khatm_cycles (started_at) VALUES (?)`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("opening khatm cycle: %w", err)
	}
	return res.LastInsertId()
}

// MarkJuz records juz as read in the open cycle. Marking a part twice is a
// no-op. When the thirtieth part is marked the cycle is closed, a new one is
// opened and completed is true.
func (s *Store) MarkJuz(juz int) (status KhatmStatus, completed bool, err error) {
	if juz < 1 || juz > JuzCount {
		return KhatmStatus{}, false, fmt.Errorf("juz must be between 1 and %d, got %d", JuzCount, juz)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return KhatmStatus{}, false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	cycle, err := openCycle(tx)
	if err != nil {
		return KhatmStatus{}, false, err
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO khatm_juz (cycle_id, juz, read_at) VALUES (?, ?, ?)`,
		cycle, juz, time.Now().UTC()); err != nil {
		return KhatmStatus{}, false, fmt.Errorf("marking juz %d: %w", juz, err)
	}

	var read int
	if err := tx.Get(&read, `SELECT COUNT(*) FROM khatm_juz WHERE cycle_id = ?`, cycle); err != nil {
		return KhatmStatus{}, false, fmt.Errorf("counting juz: %w", err)
	}
	if read == JuzCount {
		if _, err := tx.Exec(`UPDATE khatm_cycles SET completed_at = ? WHERE id = ?`, time.Now().UTC(), cycle); err != nil {
			return KhatmStatus{}, false, fmt.Errorf("closing khatm cycle: %w", err)
		}
		if _, err := openCycle(tx); err != nil {
			return KhatmStatus{}, false, err
		}
		completed = true
	}

	if err := tx.Commit(); err != nil {
		return KhatmStatus{}, false, fmt.Errorf("committing juz %d: %w", juz, err)
	}

	status, err = s.KhatmProgress()
	return status, completed, err
}

// KhatmProgress reports the open cycle and the number of completed cycles.
func (s *Store) KhatmProgress() (KhatmStatus, error) {
	var status KhatmStatus
	if err := s.db.Get(&status.Completed, `SELECT COUNT(*) FROM khatm_cycles WHERE completed_at IS NOT NULL`); err != nil {
		return KhatmStatus{}, fmt.Errorf("counting khatm cycles: %w", err)
	}
	status.Cycle = status.Completed + 1

	err := s.db.Select(&status.Juz, `
		SELECT j.juz
		FROM khatm_juz j
		JOIN khatm_cycles c ON c.id = j.cycle_id
		WHERE c.completed_at IS NULL
		ORDER BY j.juz`)
	if err != nil {
		return KhatmStatus{}, fmt.Errorf("listing juz: %w", err)
	}
	if status.Juz == nil {
		status.Juz = []int{}
	}
	status.Percent = float64(len(status.Juz)) * 100 / JuzCount
	return status, nil
}
