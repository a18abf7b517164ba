// Package config provides persistent configuration for miqat.
//
// Configuration lives in $XDG_CONFIG_HOME/miqat/ (default ~/.config/miqat/)
// as config.json, config.toml or config.yaml; the first that exists wins and
// new files are JSON. The merge priority is: CLI flags > MIQAT_* environment
// variables > config file > defaults.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/miqat/internal/logging"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

const (
	configDirName = "miqat"
	envPrefix     = "MIQAT_"
)

// fileNames are searched in order by Path.
var fileNames = []string{"config.json", "config.toml", "config.yaml", "config.yml"}

// Schedule sources.
const (
	SourceLocal   = "local"
	SourceAladhan = "aladhan"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"latitude", "longitude",
	"city", "country",
	"method", "source", "high_latitude_rule",
	"timezone", "time_format",
	"prayers",
	"cache_dir", "redis_addr", "db_path",
	"mqtt_broker", "mqtt_topic",
	"listen_addr",
	"log_level",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	// pointers so we can distinguish "not set" from 0
	Latitude         *float64 `json:"latitude,omitempty" toml:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty" toml:"longitude,omitempty" yaml:"longitude,omitempty"`
	City             string   `json:"city,omitempty" toml:"city,omitempty" yaml:"city,omitempty"`
	Country          string   `json:"country,omitempty" toml:"country,omitempty" yaml:"country,omitempty"`
	Method           string   `json:"method,omitempty" toml:"method,omitempty" yaml:"method,omitempty"`
	Source           string   `json:"source,omitempty" toml:"source,omitempty" yaml:"source,omitempty"` // "local" or "aladhan"
	HighLatitudeRule string   `json:"high_latitude_rule,omitempty" toml:"high_latitude_rule,omitempty" yaml:"high_latitude_rule,omitempty"`
	Timezone         string   `json:"timezone,omitempty" toml:"timezone,omitempty" yaml:"timezone,omitempty"`
	TimeFormat       string   `json:"time_format,omitempty" toml:"time_format,omitempty" yaml:"time_format,omitempty"` // "12h" or "24h"
	Prayers          string   `json:"prayers,omitempty" toml:"prayers,omitempty" yaml:"prayers,omitempty"`             // comma-separated list
	CacheDir         string   `json:"cache_dir,omitempty" toml:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
	RedisAddr        string   `json:"redis_addr,omitempty" toml:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
	DBPath           string   `json:"db_path,omitempty" toml:"db_path,omitempty" yaml:"db_path,omitempty"`
	MQTTBroker       string   `json:"mqtt_broker,omitempty" toml:"mqtt_broker,omitempty" yaml:"mqtt_broker,omitempty"`
	MQTTTopic        string   `json:"mqtt_topic,omitempty" toml:"mqtt_topic,omitempty" yaml:"mqtt_topic,omitempty"`
	ListenAddr       string   `json:"listen_addr,omitempty" toml:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	LogLevel         string   `json:"log_level,omitempty" toml:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	return Config{
		Method:           prayer.DefaultMethod.String(),
		Source:           SourceLocal,
		HighLatitudeRule: prayer.HighLatitudeNone.String(),
		TimeFormat:       "24h",
		MQTTTopic:        "miqat",
		ListenAddr:       ":8080",
		LogLevel:         logging.DefaultLevel,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file: the first supported file
// that exists, or config.json when there is none yet.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, fileNames[0]), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// Environment overrides are not applied; see ApplyEnv.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path. The format is chosen
// by the file extension.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path in the format matching
// its extension.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(c)
		data = buf.Bytes()
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from .env in the working directory and
// from the config directory. Variables already set are left alone and
// missing files are ignored.
func LoadDotEnv() error {
	paths := []string{".env"}
	if dir, err := Dir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// EnvName returns the environment variable that overrides key, e.g.
// MIQAT_MQTT_BROKER for mqtt_broker.
func EnvName(key string) string {
	return envPrefix + strings.ToUpper(key)
}

// ApplyEnv overrides settings from MIQAT_* environment variables. Values are
// validated like `config set`.
func (c *Config) ApplyEnv() error {
	for _, key := range ValidKeys {
		v, ok := os.LookupEnv(EnvName(key))
		if !ok || v == "" {
			continue
		}
		if err := c.Set(key, v); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	switch key {
	case "latitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: must be a number", value)
		}
		if !(v >= -90 && v <= 90) {
			return fmt.Errorf("invalid latitude %q: must be between -90 and 90", value)
		}
		c.Latitude = &v
	case "longitude":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: must be a number", value)
		}
		if !(v >= -180 && v <= 180) {
			return fmt.Errorf("invalid longitude %q: must be between -180 and 180", value)
		}
		c.Longitude = &v
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "method":
		m, err := prayer.ParseMethod(value)
		if err != nil {
			return err
		}
		c.Method = m.String()
	case "source":
		if value != SourceLocal && value != SourceAladhan {
			return fmt.Errorf("invalid source %q: must be %q or %q", value, SourceLocal, SourceAladhan)
		}
		c.Source = value
	case "high_latitude_rule":
		r, err := prayer.ParseHighLatitudeRule(value)
		if err != nil {
			return err
		}
		c.HighLatitudeRule = r.String()
	case "timezone":
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", value, err)
		}
		c.Timezone = value
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "prayers":
		if _, err := prayer.ParseNames(value); err != nil {
			return fmt.Errorf("invalid prayers list: %w", err)
		}
		c.Prayers = value
	case "cache_dir":
		c.CacheDir = value
	case "redis_addr":
		if _, _, err := net.SplitHostPort(value); err != nil {
			return fmt.Errorf("invalid redis_addr %q: must be host:port", value)
		}
		c.RedisAddr = value
	case "db_path":
		c.DBPath = value
	case "mqtt_broker":
		c.MQTTBroker = value
	case "mqtt_topic":
		if strings.TrimSpace(value) == "" || strings.ContainsAny(value, "#+") {
			return fmt.Errorf("invalid mqtt_topic %q: must be non-empty without wildcards", value)
		}
		c.MQTTTopic = value
	case "listen_addr":
		if _, _, err := net.SplitHostPort(value); err != nil {
			return fmt.Errorf("invalid listen_addr %q: must be [host]:port", value)
		}
		c.ListenAddr = value
	case "log_level":
		if _, err := logging.ParseLevel(value); err != nil {
			return err
		}
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "latitude":
		return formatFloat(c.Latitude), nil
	case "longitude":
		return formatFloat(c.Longitude), nil
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "method":
		return c.Method, nil
	case "source":
		return c.Source, nil
	case "high_latitude_rule":
		return c.HighLatitudeRule, nil
	case "timezone":
		return c.Timezone, nil
	case "time_format":
		return c.TimeFormat, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "redis_addr":
		return c.RedisAddr, nil
	case "db_path":
		return c.DBPath, nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "log_level":
		return c.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Coordinate returns the configured position and whether both latitude and
// longitude are set.
func (c *Config) Coordinate() (prayer.Coordinate, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return prayer.Coordinate{}, false
	}
	return prayer.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}, true
}

// MethodOrDefault returns the configured method, falling back to def when
// unset or unknown.
func (c *Config) MethodOrDefault(def prayer.Method) prayer.Method {
	if c.Method == "" {
		return def
	}
	m, err := prayer.ParseMethod(c.Method)
	if err != nil {
		return def
	}
	return m
}

// HighLatitude returns the configured rule, or none.
func (c *Config) HighLatitude() prayer.HighLatitudeRule {
	r, err := prayer.ParseHighLatitudeRule(c.HighLatitudeRule)
	if err != nil {
		return prayer.HighLatitudeNone
	}
	return r
}

// Location resolves the configured timezone. An empty timezone yields nil.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PrayerNames parses the prayers filter. An empty filter yields nil, which
// selects every instant.
func (c *Config) PrayerNames() ([]prayer.Name, error) {
	if strings.TrimSpace(c.Prayers) == "" {
		return nil, nil
	}
	return prayer.ParseNames(c.Prayers)
}
