package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "miqat.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func TestOpen_MigratesToLatest(t *testing.T) {
	s := openTestStore(t)
	v, err := s.Version()
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miqat.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, err := s.Increment("SubhanAllah", 5); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	c, err := s.Get("SubhanAllah")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Count != 5 {
		t.Errorf("count after reopen = %d, want 5", c.Count)
	}
	counters, _ := s.List()
	if len(counters) != 4 {
		t.Errorf("reopen duplicated presets: %d counters", len(counters))
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "miqat.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	s.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("Open should refuse a database from a newer version")
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	if got := DefaultPath(); got != "/tmp/xdg-data/miqat/miqat.db" {
		t.Errorf("DefaultPath() = %q", got)
	}
}

// ---------------------------------------------------------------------------
// Dhikr
// ---------------------------------------------------------------------------

func TestDhikrPresets(t *testing.T) {
	s := openTestStore(t)
	counters, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []struct {
		name   string
		target int
	}{
		{"SubhanAllah", 33},
		{"Alhamdulillah", 33},
		{"AllahuAkbar", 34},
		{"Astaghfirullah", 100},
	}
	if len(counters) != len(want) {
		t.Fatalf("List returned %d counters, want %d", len(counters), len(want))
	}
	for i, w := range want {
		if counters[i].Name != w.name || counters[i].Target != w.target || counters[i].Count != 0 {
			t.Errorf("preset %d = %+v, want %s/%d", i, counters[i], w.name, w.target)
		}
		if counters[i].UpdatedAt.IsZero() {
			t.Errorf("preset %s has no timestamp", counters[i].Name)
		}
	}
}

func TestIncrement_ReportsTargetOnce(t *testing.T) {
	s := openTestStore(t)

	c, reached, err := s.Increment("AllahuAkbar", 30)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if reached || c.Count != 30 {
		t.Fatalf("after 30: count %d reached %v", c.Count, reached)
	}

	c, reached, err = s.Increment("AllahuAkbar", 4)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if !reached || c.Count != 34 || !c.Done() {
		t.Errorf("after 34: count %d reached %v done %v, want target reached", c.Count, reached, c.Done())
	}

	_, reached, err = s.Increment("AllahuAkbar", 1)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if reached {
		t.Error("target should only be reported when crossed")
	}
}

func TestIncrement_CreatesCounter(t *testing.T) {
	s := openTestStore(t)

	c, reached, err := s.Increment("  Salawat ", 1)
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if c.Name != "Salawat" || c.Count != 1 || c.Target != 0 || reached {
		t.Errorf("new counter = %+v reached %v", c, reached)
	}
	if c.Done() {
		t.Error("open-ended counter should never be done")
	}
}

func TestIncrement_Invalid(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.Increment("", 1); err == nil {
		t.Error("empty name should fail")
	}
	if _, _, err := s.Increment("SubhanAllah", 0); err == nil {
		t.Error("zero increment should fail")
	}
}

func TestSetTargetAndReset(t *testing.T) {
	s := openTestStore(t)

	c, err := s.SetTarget("Salawat", 10)
	if err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if c.Target != 10 || c.Count != 0 {
		t.Errorf("SetTarget = %+v", c)
	}

	if _, _, err := s.Increment("Salawat", 7); err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if err := s.Reset("Salawat"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	c, err = s.Get("Salawat")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if c.Count != 0 || c.Target != 10 {
		t.Errorf("after reset = %+v, want count 0 target 10", c)
	}

	if _, err := s.SetTarget("Salawat", -1); err == nil {
		t.Error("negative target should fail")
	}
}

func TestMissingCounter(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("Nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
	if err := s.Reset("Nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reset missing = %v, want ErrNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// Khatm
// ---------------------------------------------------------------------------

func TestKhatmProgress_Empty(t *testing.T) {
	s := openTestStore(t)
	st, err := s.KhatmProgress()
	if err != nil {
		t.Fatalf("KhatmProgress: %v", err)
	}
	if st.Cycle != 1 || st.Completed != 0 || len(st.Juz) != 0 || st.Percent != 0 {
		t.Errorf("empty progress = %+v", st)
	}
	if len(st.Remaining()) != JuzCount {
		t.Errorf("Remaining() = %d parts, want %d", len(st.Remaining()), JuzCount)
	}
}

func TestMarkJuz(t *testing.T) {
	s := openTestStore(t)

	for _, j := range []int{3, 1, 3} {
		if _, _, err := s.MarkJuz(j); err != nil {
			t.Fatalf("MarkJuz(%d): %v", j, err)
		}
	}
	st, err := s.KhatmProgress()
	if err != nil {
		t.Fatalf("KhatmProgress: %v", err)
	}
	if len(st.Juz) != 2 || st.Juz[0] != 1 || st.Juz[1] != 3 {
		t.Errorf("Juz = %v, want [1 3]", st.Juz)
	}
	if st.Percent != 200.0/30 {
		t.Errorf("Percent = %v, want %v", st.Percent, 200.0/30)
	}

	for _, j := range []int{0, 31, -2} {
		if _, _, err := s.MarkJuz(j); err == nil {
			t.Errorf("MarkJuz(%d) should fail", j)
		}
	}
}

func TestMarkJuz_CompletesCycle(t *testing.T) {
	s := openTestStore(t)

	var completed bool
	var st KhatmStatus
	var err error
	for j := 1; j <= JuzCount; j++ {
		st, completed, err = s.MarkJuz(j)
		if err != nil {
			t.Fatalf("MarkJuz(%d): %v", j, err)
		}
		if j < JuzCount && completed {
			t.Fatalf("cycle completed early at juz %d", j)
		}
	}
	if !completed {
		t.Fatal("marking all 30 juz should complete the cycle")
	}
	if st.Completed != 1 || st.Cycle != 2 || len(st.Juz) != 0 {
		t.Errorf("after khatm = %+v, want cycle 2 with nothing read", st)
	}

	st, _, err = s.MarkJuz(30)
	if err != nil {
		t.Fatalf("MarkJuz in second cycle: %v", err)
	}
	if st.Cycle != 2 || len(st.Juz) != 1 {
		t.Errorf("second cycle = %+v", st)
	}
}

// ---------------------------------------------------------------------------
// Fasts
// ---------------------------------------------------------------------------

func TestFasts(t *testing.T) {
	s := openTestStore(t)

	entries := []struct {
		day  int
		kept bool
	}{
		{1, true}, {2, true}, {3, false}, {2, false}, {10, true},
	}
	for _, e := range entries {
		if err := s.LogFast(1446, e.day, e.kept); err != nil {
			t.Fatalf("LogFast(%d): %v", e.day, err)
		}
	}
	if err := s.LogFast(1447, 1, true); err != nil {
		t.Fatalf("LogFast other year: %v", err)
	}

	sum, err := s.FastSummary(1446)
	if err != nil {
		t.Fatalf("FastSummary: %v", err)
	}
	if len(sum.Days) != 4 || sum.Kept != 2 || sum.Missed != 2 {
		t.Errorf("summary = %+v, want 4 days, 2 kept, 2 missed", sum)
	}
	if sum.Days[1].Day != 2 || sum.Days[1].Kept {
		t.Errorf("day 2 should have been replaced with missed: %+v", sum.Days[1])
	}

	empty, err := s.FastSummary(1400)
	if err != nil {
		t.Fatalf("FastSummary empty: %v", err)
	}
	if len(empty.Days) != 0 || empty.Kept != 0 {
		t.Errorf("empty summary = %+v", empty)
	}

	if err := s.LogFast(1446, 31, true); err == nil {
		t.Error("day 31 should fail")
	}
}
