package models

// BatchRequest is one admission request: a job identifier plus the image
// sources captured in a single monitoring cycle. At least one source list
// must be non-empty for the batch to do any work.
type BatchRequest struct {
	JobID      string   `json:"job_id"`
	ImagePaths []string `json:"image_paths,omitempty"`
	ImageURLs  []string `json:"image_urls,omitempty"`
}

// Empty reports whether the request carries no image sources at all.
func (b BatchRequest) Empty() bool {
	return len(b.ImagePaths) == 0 && len(b.ImageURLs) == 0
}
