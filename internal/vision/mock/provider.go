package mock

import (
	"context"

	"github.com/classpulse/classpulse/pkg/models"
)

// cannedAnalysis looks like real provider output, including the metric
// lines the extractor scans for.
const cannedAnalysis = `1. METRIC: ATTENTIVENESS_RATING: 7
2. METRIC: EYE_CONTACT_SCORE: 8
3. METRIC: POSTURE_SCORE: 6
4. METRIC: FOCUS_DURATION: 75%
5. DETAILED_OBSERVATIONS:
- Student is facing the screen with occasional glances away
- No visible distractions in frame`

// MockProvider satisfies models.VisionProvider for testing.
type MockProvider struct {
	Name_            string
	AnalyzeFunc      func(ctx context.Context, instruction string, images []models.Image) (string, error)
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) AnalyzeImages(ctx context.Context, instruction string, images []models.Image) (string, error) {
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, instruction, images)
	}
	return "", nil
}

func (m *MockProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}
	return "", nil
}

// NewMockProvider returns a MockProvider with sensible default responses.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		AnalyzeFunc: func(_ context.Context, _ string, _ []models.Image) (string, error) {
			return cannedAnalysis, nil
		},
		GenerateTextFunc: func(_ context.Context, _ string) (string, error) {
			return "Mock narrative: the student stayed mostly engaged throughout the session.", nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		AnalyzeFunc: func(_ context.Context, _ string, _ []models.Image) (string, error) {
			return "", err
		},
		GenerateTextFunc: func(_ context.Context, _ string) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		AnalyzeFunc: func(ctx context.Context, _ string, _ []models.Image) (string, error) {
			<-ctx.Done()
			return "", models.ErrInferenceTimeout
		},
		GenerateTextFunc: func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", models.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements VisionProvider.
var _ models.VisionProvider = (*MockProvider)(nil)
