package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

func TestBatchGenerateWithQualityControl(t *testing.T) {
	ctx := context.Background()

	t.Run("閾値未満のスコアはリトライされ、合格したら打ち切る", func(t *testing.T) {
		scores := []float64{0.4, 0.9}
		call := 0
		assessor := &mockAssessor{
			assessFunc: func(result *domain.GenerationResult) float64 {
				s := scores[call]
				call++
				return s
			},
		}
		o := newTestOrchestrator(t, nil, nil, assessor, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, []string{"brushing teeth"}, domain.GenerationRequest{}, DefaultBatchOptions())

		require.Len(t, report.Items, 1)
		item := report.Items[0]
		assert.True(t, item.Success)
		assert.Equal(t, 2, item.AttemptsUsed)
		assert.InDelta(t, 0.9, item.QualityScore, 1e-9)
		assert.Equal(t, 1, report.Successful)
	})

	t.Run("リトライ上限に達したら最後の試行結果をそのまま報告する", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(result *domain.GenerationResult) float64 { return 0.1 },
		}
		client := &mockClient{}
		o := newTestOrchestrator(t, nil, client, assessor, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, []string{"washing hands"}, domain.GenerationRequest{}, BatchOptions{MaxRetries: 2, QualityThreshold: 0.7})

		require.Len(t, report.Items, 1)
		item := report.Items[0]
		// 生成自体は成功しているため、低スコアでも結果は採用する
		assert.True(t, item.Success)
		assert.Equal(t, 3, item.AttemptsUsed, "初回+リトライ2回")
		assert.InDelta(t, 0.1, item.QualityScore, 1e-9)
		assert.Equal(t, 3, client.callCount())
	})

	t.Run("生成が失敗し続けても必ず結果を返す", func(t *testing.T) {
		client := &mockClient{
			generateFunc: func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
				return nil, errors.New("provider down")
			},
		}
		o := newTestOrchestrator(t, nil, client, nil, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, []string{"eating lunch"}, domain.GenerationRequest{}, BatchOptions{MaxRetries: 1, QualityThreshold: 0.7})

		require.Len(t, report.Items, 1)
		item := report.Items[0]
		assert.False(t, item.Success)
		assert.Contains(t, item.Error, "provider down")
		assert.Equal(t, 2, item.AttemptsUsed)
		assert.Equal(t, 0, report.Successful)
	})

	t.Run("閾値0は成功した生成を常に合格にする", func(t *testing.T) {
		assessor := &mockAssessor{
			assessFunc: func(result *domain.GenerationResult) float64 { return 0.0 },
		}
		client := &mockClient{}
		o := newTestOrchestrator(t, nil, client, assessor, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, []string{"reading"}, domain.GenerationRequest{}, BatchOptions{MaxRetries: 3, QualityThreshold: 0})

		require.Len(t, report.Items, 1)
		assert.Equal(t, 1, report.Items[0].AttemptsUsed)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("リトライのたびに新しいシードが使われる", func(t *testing.T) {
		var mu sync.Mutex
		var seeds []*int64
		client := &mockClient{
			generateFunc: func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
				mu.Lock()
				seeds = append(seeds, extras.Seed)
				mu.Unlock()
				return &domain.ImageRef{Data: []byte("ok"), MimeType: "image/png"}, nil
			},
		}
		assessor := &mockAssessor{
			assessFunc: func(result *domain.GenerationResult) float64 { return 0.1 },
		}
		next := int64(100)
		o := newTestOrchestrator(t, nil, client, assessor, Options{
			SeedFn: func() int64 { next++; return next },
		})

		o.BatchGenerateWithQualityControl(ctx, []string{"getting dressed"}, domain.GenerationRequest{}, BatchOptions{MaxRetries: 2, QualityThreshold: 0.7})

		require.Len(t, seeds, 3)
		assert.Nil(t, seeds[0], "初回はリクエストのシードをそのまま使う")
		require.NotNil(t, seeds[1])
		require.NotNil(t, seeds[2])
		assert.Equal(t, int64(101), *seeds[1])
		assert.Equal(t, int64(102), *seeds[2])
	})

	t.Run("キャンセル後の未着手アクションは失敗として埋められる", func(t *testing.T) {
		batchCtx, cancel := context.WithCancel(context.Background())
		client := &mockClient{
			generateFunc: func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
				cancel() // 1件目の処理中に取り消しが発生したとみなす
				return &domain.ImageRef{Data: []byte("ok"), MimeType: "image/png"}, nil
			},
		}
		o := newTestOrchestrator(t, nil, client, nil, Options{})

		report := o.BatchGenerateWithQualityControl(batchCtx, []string{"a", "b", "c"}, domain.GenerationRequest{}, DefaultBatchOptions())

		require.Len(t, report.Items, 3)
		assert.True(t, report.Items[0].Success)
		assert.False(t, report.Items[1].Success)
		assert.Contains(t, report.Items[1].Error, "context canceled")
		assert.False(t, report.Items[2].Success)
		assert.Equal(t, 1, client.callCount())
	})

	t.Run("平均試行回数が集計される", func(t *testing.T) {
		// 1件目は2回、2件目は1回で合格するようにスコアを並べる
		scores := []float64{0.5, 0.9, 0.9}
		call := 0
		assessor := &mockAssessor{
			assessFunc: func(result *domain.GenerationResult) float64 {
				s := scores[call]
				call++
				return s
			},
		}
		o := newTestOrchestrator(t, nil, nil, assessor, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, []string{"a", "b"}, domain.GenerationRequest{}, DefaultBatchOptions())

		assert.Equal(t, 2, report.Total)
		assert.Equal(t, 2, report.Successful)
		assert.InDelta(t, 1.5, report.AverageAttempts, 1e-9)
	})

	t.Run("空のアクション一覧では空の報告を返す", func(t *testing.T) {
		o := newTestOrchestrator(t, nil, nil, nil, Options{})

		report := o.BatchGenerateWithQualityControl(ctx, nil, domain.GenerationRequest{}, DefaultBatchOptions())

		assert.Empty(t, report.Items)
		assert.Equal(t, 0, report.Total)
		assert.InDelta(t, 0.0, report.AverageAttempts, 1e-9)
	})
}
