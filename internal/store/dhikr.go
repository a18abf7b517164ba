package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Counter is a named dhikr tally. A zero Target means open-ended.
type Counter struct {
	Name      string    `db:"name" json:"name"`
	Count     int       `db:"count" json:"count"`
	Target    int       `db:"target" json:"target"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Done reports whether the counter has reached its target.
func (c Counter) Done() bool {
	return c.Target > 0 && c.Count >= c.Target
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("dhikr name must not be empty")
	}
	return name, nil
}

// Get returns the counter called name.
func (s *Store) Get(name string) (Counter, error) {
	var c Counter
	err := s.db.Get(&c, `
		SELECT name, count, target, updated_at
		FROM dhikr
		WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return Counter{}, fmt.Errorf("dhikr %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Counter{}, fmt.Errorf("loading dhikr %q: %w", name, err)
	}
	return c, nil
}

// List returns every counter, presets first.
func (s *Store) List() ([]Counter, error) {
	var counters []Counter
	err := s.db.Select(&counters, `
		SELECT name, count, target, updated_at
		FROM dhikr
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing dhikr: %w", err)
	}
	return counters, nil
}

// Increment adds n to the counter called name, creating it if needed. reached
// is true when this increment carried the count onto or past the target.
func (s *Store) Increment(name string, n int) (c Counter, reached bool, err error) {
	name, err = cleanName(name)
	if err != nil {
		return Counter{}, false, err
	}
	if n < 1 {
		return Counter{}, false, fmt.Errorf("increment must be positive, got %d", n)
	}

	before, err := s.Get(name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Counter{}, false, err
	}

	_, err = s.db.Exec(`
		INSERT INTO dhikr (name, count, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		count = count + excluded.count,
		updated_at = excluded.updated_at`, name, n, time.Now().UTC())
	if err != nil {
		return Counter{}, false, fmt.Errorf("incrementing dhikr %q: %w", name, err)
	}

	c, err = s.Get(name)
	if err != nil {
		return Counter{}, false, err
	}
	return c, c.Done() && !before.Done(), nil
}

// SetTarget sets the target of name, creating the counter if needed. Zero
// removes the target.
func (s *Store) SetTarget(name string, target int) (Counter, error) {
	name, err := cleanName(name)
	if err != nil {
		return Counter{}, err
	}
	if target < 0 {
		return Counter{}, fmt.Errorf("target must not be negative, got %d", target)
	}

	_, err = s.db.Exec(`
		INSERT INTO dhikr (name, target, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
		target = excluded.target,
		updated_at = excluded.updated_at`, name, target, time.Now().UTC())
	if err != nil {
		return Counter{}, fmt.Errorf("setting target of %q: %w", name, err)
	}
	return s.Get(name)
}

// Reset sets the count of name back to zero.
func (s *Store) Reset(name string) error {
	res, err := s.db.Exec(`
		UPDATE dhikr
		SET count = 0, updated_at = ?
		WHERE name = ?`, time.Now().UTC(), name)
	if err != nil {
		return fmt.Errorf("resetting dhikr %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("dhikr %q: %w", name, ErrNotFound)
	}
	return nil
}
