package models

import "context"

// Image is a fetched snapshot, ready to send to a vision provider.
type Image struct {
	MIMEType string
	Data     []byte
	Source   string // original path or URL, for logging only
}

// VisionProvider is the core interface all vision/narrative integrations
// must implement. Never call a specific provider directly — always inject
// this interface.
//
// Provider output is free-form prose. Callers must tolerate missing or
// malformed metric lines; the provider response is never a structured
// contract.
type VisionProvider interface {
	// AnalyzeImages sends the instruction plus the batch images and returns
	// the provider's textual analysis.
	AnalyzeImages(ctx context.Context, instruction string, images []Image) (string, error)
	// GenerateText runs a text-only prompt, used for session narratives.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// Name returns the provider identifier (e.g., "gemini", "openai").
	Name() string
}
