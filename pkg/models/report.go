package models

// SessionMetrics summarizes every entry recorded for a job.
type SessionMetrics struct {
	TotalEntries         int     `json:"total_entries"`
	AverageAttentiveness float64 `json:"average_attentiveness"`
	AverageEyeContact    float64 `json:"average_eye_contact"`
	AveragePosture       float64 `json:"average_posture"`
	TotalFocusDuration   int     `json:"total_focus_duration"`
	LatestComment        string  `json:"latest_comment"`
}

// SessionRawData carries the per-entry arrays backing the aggregates.
type SessionRawData struct {
	TotalSnapshots      int       `json:"total_snapshots"`
	Timestamps          []string  `json:"timestamps"`
	AttentivenessScores []float64 `json:"attentiveness_scores"`
	EyeContactScores    []float64 `json:"eye_contact_scores"`
	PostureScores       []float64 `json:"posture_scores"`
	FocusDurations      []int     `json:"focus_durations"`
}

// SessionReport is the composite result of aggregating a job: computed
// metrics, the provider-written narrative, and the raw per-entry arrays.
type SessionReport struct {
	Metrics  SessionMetrics `json:"metrics"`
	Analysis string         `json:"analysis"`
	RawData  SessionRawData `json:"raw_data"`
}
