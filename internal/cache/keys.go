package cache

import "fmt"

// ReportKey caches a session report. The entry count is part of the key so
// a report is reused only while no new batch has been recorded.
func ReportKey(jobID string, entries int) string {
	return fmt.Sprintf("report:%s:%d", jobID, entries)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
