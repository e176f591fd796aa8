package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_FullAnalysis(t *testing.T) {
	analysis := `The student appears engaged with the material.

METRIC: ATTENTIVENESS_RATING: 7
METRIC: EYE_CONTACT_SCORE: 8.5
METRIC: POSTURE_SCORE: 6
METRIC: FOCUS_DURATION: 75%

Overall a productive stretch of the session.`

	f := Extract(analysis)
	assert.Equal(t, 7.0, f.Attentiveness)
	assert.Equal(t, 8.5, f.EyeContact)
	assert.Equal(t, 6.0, f.Posture)
	assert.Equal(t, 45, f.FocusDuration) // 75% of a 60s window
}

func TestExtract_EmptyText(t *testing.T) {
	f := Extract("")
	assert.Equal(t, DefaultScore, f.Attentiveness)
	assert.Equal(t, DefaultScore, f.EyeContact)
	assert.Equal(t, DefaultScore, f.Posture)
	assert.Equal(t, DefaultFocusDuration, f.FocusDuration)
}

func TestExtract_MissingMarkersFallBack(t *testing.T) {
	f := Extract("METRIC: ATTENTIVENESS_RATING: 9\nno other markers here")
	assert.Equal(t, 9.0, f.Attentiveness)
	assert.Equal(t, DefaultScore, f.EyeContact)
	assert.Equal(t, DefaultScore, f.Posture)
	assert.Equal(t, DefaultFocusDuration, f.FocusDuration)
}

func TestExtract_MalformedValueFallsBack(t *testing.T) {
	analysis := "METRIC: ATTENTIVENESS_RATING: high\nMETRIC: EYE_CONTACT_SCORE: 4"
	f := Extract(analysis)
	assert.Equal(t, DefaultScore, f.Attentiveness, "unparsable value keeps the default")
	assert.Equal(t, 4.0, f.EyeContact, "a bad line must not stop later markers")
}

func TestExtract_ValueAfterLastColon(t *testing.T) {
	// Prose may contain colons; only the last one delimits the value.
	f := Extract("Note: the student rallied: ATTENTIVENESS_RATING: 8")
	assert.Equal(t, 8.0, f.Attentiveness)
}

func TestExtract_MarkersAreCaseSensitive(t *testing.T) {
	f := Extract("metric: attentiveness_rating: 9")
	assert.Equal(t, DefaultScore, f.Attentiveness)
}

func TestExtract_FocusDurationRounding(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"whole percent", "METRIC: FOCUS_DURATION: 50%", 30},
		{"rounds half up", "METRIC: FOCUS_DURATION: 62.5%", 38}, // 37.5s rounds to 38
		{"no percent sign", "METRIC: FOCUS_DURATION: 100", 60},
		{"zero", "METRIC: FOCUS_DURATION: 0%", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.line).FocusDuration)
		})
	}
}

func TestExtract_WhitespaceTolerated(t *testing.T) {
	f := Extract("   METRIC: POSTURE_SCORE:    7.25   ")
	assert.Equal(t, 7.25, f.Posture)
}

func TestExtract_LaterLineWins(t *testing.T) {
	f := Extract("METRIC: POSTURE_SCORE: 3\nMETRIC: POSTURE_SCORE: 9")
	assert.Equal(t, 9.0, f.Posture)
}
