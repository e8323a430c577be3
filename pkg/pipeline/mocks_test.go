package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/shouni/visual-aid-kit/pkg/catalog"
	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// newBlockingLimiter はキャンセル伝播の検証用に、実質的に進まないリミッタを返します。
func newBlockingLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Hour), 1)
}

// mockComposer は受け取った要求を記録するプロンプト構築のモックです。
type mockComposer struct {
	mu        sync.Mutex
	requests  []domain.GenerationRequest
	buildFunc func(req domain.GenerationRequest) string
}

func (m *mockComposer) Build(req domain.GenerationRequest) string {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.buildFunc != nil {
		return m.buildFunc(req)
	}
	return "prompt: " + req.Action
}

func (m *mockComposer) capturedRequests() []domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationRequest(nil), m.requests...)
}

// mockClient は画像生成クライアントのモックです。
// generateFunc を差し替えて遅延・失敗・完了順をシミュレートします。
type mockClient struct {
	mu           sync.Mutex
	calls        int
	generateFunc func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error)
}

func (m *mockClient) Generate(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt, size, extras)
	}
	return &domain.ImageRef{Data: []byte("fake-image"), MimeType: "image/png"}, nil
}

func (m *mockClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockAssessor は品質スコアを固定またはカスタマイズできる採点器のモックです。
type mockAssessor struct {
	assessFunc func(result *domain.GenerationResult) float64
}

func (m *mockAssessor) Assess(result *domain.GenerationResult) float64 {
	if m.assessFunc != nil {
		return m.assessFunc(result)
	}
	return 1.0
}

func newTestOrchestrator(t *testing.T, composer *mockComposer, client *mockClient, assessor *mockAssessor, opts Options) *Orchestrator {
	t.Helper()
	if composer == nil {
		composer = &mockComposer{}
	}
	if client == nil {
		client = &mockClient{}
	}
	if assessor == nil {
		assessor = &mockAssessor{}
	}
	o, err := New(composer, client, assessor, catalog.Default(), opts)
	require.NoError(t, err)
	return o
}
