package vision

import (
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/pkg/models"
)

// observationPrompt instructs the provider to emit metric lines in the
// "METRIC: score" shape the extractor scans for. The extractor still treats
// the response as unreliable prose.
const observationPrompt = `You are an expert supervisor monitoring student attention in an online class through webcam screenshots.
Analyze the student's attention levels and behavior in detail. Do not respond with anything but the final analysis.

Provide your analysis in the following structured format:

1. ATTENTIVENESS_RATING (1-10): Give an overall rating

2. EYE_CONTACT_SCORE (1-10): Rate how well the student maintains eye contact with the screen
- Consider: gaze direction, frequency of looking away

3. POSTURE_SCORE (1-10): Evaluate the student's sitting posture
- Consider: upright position, slouching, distance from screen

4. FOCUS_DURATION: Estimate the percentage of time the student appears focused

5. DETAILED_OBSERVATIONS:
- List specific behaviors observed
- Note any distractions
- Describe engagement indicators

Format each metric clearly with "METRIC: score" on its own line for easy parsing.
You will directly return your result only.`

// buildSummaryPrompt asks the provider for a session-level narrative from
// the aggregated metrics and every per-batch analysis recorded so far.
func buildSummaryPrompt(metrics models.SessionMetrics, comments []string) string {
	var b strings.Builder

	b.WriteString("Analyze the following session metrics and provide a comprehensive summary:\n\n")
	b.WriteString("Session Statistics:\n")
	fmt.Fprintf(&b, "- Total Snapshots: %d\n", metrics.TotalEntries)
	fmt.Fprintf(&b, "- Average Attentiveness: %.2f/10\n", metrics.AverageAttentiveness)
	fmt.Fprintf(&b, "- Average Eye Contact: %.2f/10\n", metrics.AverageEyeContact)
	fmt.Fprintf(&b, "- Average Posture: %.2f/10\n", metrics.AveragePosture)
	fmt.Fprintf(&b, "- Total Focus Duration: %d seconds\n", metrics.TotalFocusDuration)
	b.WriteString("\nIndividual Analyses:\n")
	b.WriteString(strings.Join(comments, "\n"))
	b.WriteString(`

Please provide a structured analysis with the following sections:
1. OVERALL_SUMMARY: A brief overview of the student's performance
2. NEGATIVE_OBSERVATIONS: List key negative behaviors and patterns
3. AREAS_FOR_IMPROVEMENT: List specific areas needing attention
4. RECOMMENDATIONS: Practical suggestions for improvement
5. ENGAGEMENT_PATTERN: Analysis of attention patterns over time
`)

	return b.String()
}
