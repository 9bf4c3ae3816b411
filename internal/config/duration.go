package config

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a custom time.Duration that marshals/unmarshals to/from JSON
// strings (e.g. "30s", "1m", "2h", "500ms") for the dial timeout, retry
// delays, and circuit-breaker reset window a lococheckin config carries.
// Negative values are rejected: every knob this type backs is a timeout or
// backoff delay, and a negative one would make a dial or retry give up
// before it starts.
type Duration time.Duration

// UnmarshalJSON parses duration from JSON string format (e.g., "30s", "1m")
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalJSON encodes duration to JSON string format
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// String returns the string representation of the duration
func (d Duration) String() string {
	return time.Duration(d).String()
}

// AsDuration returns the underlying time.Duration
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// WithTimeout derives a child context bounded by d from parent, the same
// way lococheckin bounds its CHECKIN round trip. A zero or
// negative d leaves the child cancellable by parent alone, with no
// additional deadline.
func (d Duration) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(d))
}
