// Package metrics recovers structured attention metrics from the free-form
// text a vision provider returns. The provider output is best-effort prose:
// any marker line that is absent or unparsable falls back to a default value
// and never aborts extraction of the remaining fields.
package metrics

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Defaults applied when a marker line is missing or cannot be parsed.
const (
	DefaultScore         = 5.0
	DefaultFocusDuration = 30
)

// batchWindowSeconds is the assumed duration one snapshot batch covers.
// FOCUS_DURATION arrives as a percentage of this window.
const batchWindowSeconds = 60

// Marker substrings recognized in provider output, matched case-sensitively.
// The value is whatever follows the last colon on the line.
const (
	markerAttentiveness = "ATTENTIVENESS_RATING"
	markerEyeContact    = "EYE_CONTACT_SCORE"
	markerPosture       = "POSTURE_SCORE"
	markerFocus         = "FOCUS_DURATION"
)

// Fields holds the numeric metrics recovered from one analysis text.
type Fields struct {
	Attentiveness float64
	EyeContact    float64
	Posture       float64
	FocusDuration int // seconds
}

// Extract scans the analysis text line by line and returns the recovered
// metric fields. It is a pure function apart from logging skipped lines.
func Extract(analysis string) Fields {
	f := Fields{
		Attentiveness: DefaultScore,
		EyeContact:    DefaultScore,
		Posture:       DefaultScore,
		FocusDuration: DefaultFocusDuration,
	}

	for _, line := range strings.Split(analysis, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.Contains(line, markerAttentiveness):
			if v, err := lastValue(line); err != nil {
				logSkipped(markerAttentiveness, line, err)
			} else {
				f.Attentiveness = v
			}
		case strings.Contains(line, markerEyeContact):
			if v, err := lastValue(line); err != nil {
				logSkipped(markerEyeContact, line, err)
			} else {
				f.EyeContact = v
			}
		case strings.Contains(line, markerPosture):
			if v, err := lastValue(line); err != nil {
				logSkipped(markerPosture, line, err)
			} else {
				f.Posture = v
			}
		case strings.Contains(line, markerFocus):
			pct, err := lastPercent(line)
			if err != nil {
				logSkipped(markerFocus, line, err)
				continue
			}
			f.FocusDuration = int(math.Round(pct / 100 * batchWindowSeconds))
		}
	}

	return f
}

// lastValue parses the number after the last colon on the line.
// Expected shape: "METRIC: ATTENTIVENESS_RATING: 7".
func lastValue(line string) (float64, error) {
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return 0, fmt.Errorf("no colon in line")
	}
	raw := strings.TrimSpace(line[i+1:])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", raw, err)
	}
	return v, nil
}

// lastPercent is lastValue with a trailing percent sign tolerated.
func lastPercent(line string) (float64, error) {
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return 0, fmt.Errorf("no colon in line")
	}
	raw := strings.TrimSpace(strings.ReplaceAll(line[i+1:], "%", ""))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", raw, err)
	}
	return v, nil
}

func logSkipped(marker, line string, err error) {
	slog.Warn("unparsable metric line, using default",
		"marker", marker, "line", line, "error", err)
}
