package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var longUnits = map[string]time.Duration{
	"d": day,
	"w": 7 * day,
}

// Duration is a time.Duration read from the environment.
// Besides Go duration strings it accepts whole days ("30d"), weeks ("4w")
// and a bare number of seconds ("2592000").
type Duration struct {
	time.Duration
}

// ParseDuration parses a duration in any of the forms Duration accepts
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)

	if seconds, err := strconv.ParseInt(v, 10, 64); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("invalid duration %q: negative", v)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	for suffix, unit := range longUnits {
		count, ok := strings.CutSuffix(v, suffix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(count)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n) * unit, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	return d, nil
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(_ context.Context, v string) error {
	if v == "" {
		return nil
	}

	parsed, err := ParseDuration(v)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String prints whole days as "Nd"
func (d Duration) String() string {
	if d.Duration > 0 && d.Duration%day == 0 {
		return strconv.FormatInt(int64(d.Duration/day), 10) + "d"
	}
	return d.Duration.String()
}
