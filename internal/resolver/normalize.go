package resolver

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Epoch values beyond year 9999 in either direction are treated as malformed.
const (
	maxEpochMillis  = 253402300799999
	maxEpochSeconds = maxEpochMillis / 1000
)

var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// InvalidDateFunc receives values that looked like dates but could not be parsed.
type InvalidDateFunc func(value interface{})

// Normalizer converts the date shapes found in stored documents into instants.
// Zone-less strings are read in the reference location.
type Normalizer struct {
	loc       *time.Location
	onInvalid InvalidDateFunc
}

// NewNormalizer builds a Normalizer. onInvalid may be nil.
func NewNormalizer(loc *time.Location, onInvalid InvalidDateFunc) Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return Normalizer{loc: loc, onInvalid: onInvalid}
}

// Instant returns the instant held by value. The boolean is false for absent and
// for unparseable values; the latter are also passed to the invalid-date hook.
func (n Normalizer) Instant(value interface{}) (time.Time, bool) {
	instant, ok, invalid := n.parse(value)
	if invalid && n.onInvalid != nil {
		n.onInvalid(value)
	}
	return instant, ok
}

// InstantPtr is Instant returning nil for "no instant".
func (n Normalizer) InstantPtr(value interface{}) *time.Time {
	instant, ok := n.Instant(value)
	if !ok {
		return nil
	}
	return &instant
}

func (n Normalizer) parse(value interface{}) (time.Time, bool, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false, false
	case time.Time:
		if v.IsZero() {
			return time.Time{}, false, false
		}
		return v.UTC(), true, false
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false, false
		}
		return v.UTC(), true, false
	case string:
		return n.parseString(v)
	case json.Number:
		if millis, err := v.Int64(); err == nil {
			return fromUnixMillis(millis)
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false, true
		}
		return fromMillis(f)
	case float64:
		return fromMillis(v)
	case int64:
		return fromUnixMillis(v)
	case int:
		return fromUnixMillis(int64(v))
	case map[string]interface{}:
		return parseTimestampObject(v)
	default:
		return time.Time{}, false, true
	}
}

func (n Normalizer) parseString(raw string) (time.Time, bool, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false, false
	}

	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.UTC(), true, false
	}

	for _, layout := range zonelessLayouts {
		if parsed, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return parsed.UTC(), true, false
		}
	}

	return time.Time{}, false, true
}

func fromMillis(value float64) (time.Time, bool, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) > maxEpochMillis {
		return time.Time{}, false, true
	}
	return time.UnixMilli(int64(value)).UTC(), true, false
}

func fromUnixMillis(millis int64) (time.Time, bool, bool) {
	if millis > maxEpochMillis || millis < -maxEpochMillis {
		return time.Time{}, false, true
	}
	return time.UnixMilli(millis).UTC(), true, false
}

// parseTimestampObject reads {seconds, nanoseconds} documents, also in their
// underscore-prefixed export form.
func parseTimestampObject(value map[string]interface{}) (time.Time, bool, bool) {
	seconds, ok := numberField(value, "seconds", "_seconds")
	if !ok || math.IsNaN(seconds) || math.Abs(seconds) > maxEpochSeconds {
		return time.Time{}, false, true
	}
	nanos, _ := numberField(value, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(seconds), int64(nanos)).UTC(), true, false
}

func numberField(value map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, exists := value[key]
		if !exists {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		case json.Number:
			f, err := v.Float64()
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
