package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/geo"
)

const (
	scheduleCacheFile = "schedule_%s.json" // keyed by hash
	geoCacheFile      = "geolocation.json"
)

// File is a Cache backed by JSON files in one directory.
type File struct {
	dir string
}

var _ Cache = (*File)(nil)

// DefaultDir returns $XDG_CACHE_HOME/miqat, falling back to ~/.cache/miqat.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "miqat"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "miqat"), nil
}

// New creates a file cache rooted at dir. If dir is empty, DefaultDir is used.
func New(dir string) (*File, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &File{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *File) Dir() string {
	return c.dir
}

func (c *File) schedulePath(key Key) string {
	return filepath.Join(c.dir, fmt.Sprintf(scheduleCacheFile, key.hash()))
}

// LoadSchedule reads the cached schedule for key. Returns nil if the entry is
// missing, unreadable or for another date.
func (c *File) LoadSchedule(key Key) *ScheduleEntry {
	data, err := os.ReadFile(c.schedulePath(key))
	if err != nil {
		return nil
	}

	var entry ScheduleEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	// A stale entry for a previous day is useless.
	if entry.Date != key.day() {
		return nil
	}

	return &entry
}

// SaveSchedule writes entry under key.
func (c *File) SaveSchedule(key Key, entry *ScheduleEntry) error {
	stored := *entry
	stored.Date = key.day()

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := os.WriteFile(c.schedulePath(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// LoadGeo reads a cached geolocation result. Returns nil if the cache is
// missing or older than 24 hours.
func (c *File) LoadGeo() *geo.Location {
	data, err := os.ReadFile(filepath.Join(c.dir, geoCacheFile))
	if err != nil {
		return nil
	}

	var entry GeoEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}

	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}

	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *File) SaveGeo(loc *geo.Location) error {
	entry := GeoEntry{
		Location: *loc,
		CachedAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal geo cache: %w", err)
	}

	if err := os.WriteFile(filepath.Join(c.dir, geoCacheFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}

	return nil
}
