// Package models contains shared data models used across the ClassPulse codebase.
package models

import "time"

// Entry is the structured result of analyzing one snapshot batch.
// Entries are append-only: once recorded for a job they are never
// mutated or deleted.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	Attentiveness float64   `json:"attentiveness_rating"`
	Comment       string    `json:"comment"`
	EyeContact    float64   `json:"eye_contact_score"`
	Posture       float64   `json:"posture_score"`
	FocusDuration int       `json:"focus_duration"`
}
