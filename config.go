package acorn

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by [LoadConfig].
const (
	EnvMaxIterations   = "ACORN_MAX_ITERATIONS"
	EnvServiceMarkers  = "ACORN_SERVICE_MARKERS"
	EnvProducerMarkers = "ACORN_PRODUCER_MARKERS"
)

// DefaultMaxIterations bounds the number of requeues in one resolution run.
const DefaultMaxIterations = 1000

// Config holds the settings of the resolution engine and the catalog.
type Config struct {
	// MaxIterations bounds the total number of requeues in the resolution
	// loop. Size it after the deepest legitimate dependency chain times the
	// number of services, not after the service count alone.
	MaxIterations int

	// ServiceMarkers are the markers a service descriptor may carry.
	ServiceMarkers []Marker

	// ProducerMarkers are the markers a producer descriptor may carry.
	ProducerMarkers []Marker
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		MaxIterations:   DefaultMaxIterations,
		ServiceMarkers:  []Marker{ServiceMarker},
		ProducerMarkers: []Marker{ProducerMarker},
	}
}

// Validate reports whether c can drive a resolution run.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return fmt.Errorf("%w: maximum iterations must be positive, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if len(c.ServiceMarkers) == 0 {
		return fmt.Errorf("%w: no service markers", ErrInvalidConfig)
	}
	if len(c.ProducerMarkers) == 0 {
		return fmt.Errorf("%w: no producer markers", ErrInvalidConfig)
	}
	return nil
}

// IsServiceMarker reports whether m is recognized as a service marker.
func (c Config) IsServiceMarker(m Marker) bool { return slices.Contains(c.ServiceMarkers, m) }

// IsProducerMarker reports whether m is recognized as a producer marker.
func (c Config) IsProducerMarker(m Marker) bool { return slices.Contains(c.ProducerMarkers, m) }

// LoadConfig reads the given .env files (".env" when none are given; missing
// files are ignored) and overlays the ACORN_* environment variables on
// [DefaultConfig].
func LoadConfig(envFiles ...string) (Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if v := os.Getenv(EnvMaxIterations); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMaxIterations, err)
		}
		cfg.MaxIterations = n
	}
	if v := os.Getenv(EnvServiceMarkers); v != "" {
		cfg.ServiceMarkers = splitMarkers(v)
	}
	if v := os.Getenv(EnvProducerMarkers); v != "" {
		cfg.ProducerMarkers = splitMarkers(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func splitMarkers(v string) []Marker {
	var out []Marker
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, Marker(part))
		}
	}
	return out
}
