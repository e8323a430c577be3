package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

func TestGenerateSingle(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: メタデータに解決済みの名前とプロンプトが記録される", func(t *testing.T) {
		composer := &mockComposer{}
		o := newTestOrchestrator(t, composer, nil, nil, Options{})

		res := o.GenerateSingle(ctx, domain.GenerationRequest{
			Action:       "brushing teeth",
			StylePreset:  "visual-schedule",
			QualityLevel: "standard",
		})

		require.True(t, res.Success)
		require.NotNil(t, res.Image)
		assert.Equal(t, "brushing teeth", res.Metadata.Action)
		assert.Equal(t, "visual-schedule", res.Metadata.StylePreset)
		assert.Equal(t, "standard", res.Metadata.QualityLevel)
		assert.Equal(t, "prompt: brushing teeth", res.Metadata.Prompt)
		assert.Equal(t, "768x768", res.Metadata.Parameters.Size)
		assert.WithinDuration(t, time.Now(), res.Metadata.GeneratedAt, time.Minute)
	})

	t.Run("成功: 不明なスタイル名は既定のプリセットに解決される", func(t *testing.T) {
		o := newTestOrchestrator(t, nil, nil, nil, Options{})

		res := o.GenerateSingle(ctx, domain.GenerationRequest{
			Action:      "washing hands",
			StylePreset: "no-such-style",
		})

		require.True(t, res.Success)
		assert.Equal(t, "autism-friendly", res.Metadata.StylePreset)
		assert.Equal(t, "child-friendly", res.Metadata.QualityLevel)
	})

	t.Run("検証失敗: 空のactionはクライアント呼び出し前に弾かれる", func(t *testing.T) {
		client := &mockClient{}
		o := newTestOrchestrator(t, nil, client, nil, Options{})

		res := o.GenerateSingle(ctx, domain.GenerationRequest{Action: "   "})

		assert.False(t, res.Success)
		assert.Nil(t, res.Image)
		assert.Contains(t, res.Error, "action")
		assert.Equal(t, 0, client.callCount())
	})

	t.Run("失敗: クライアントのエラーは構造化された結果に変換される", func(t *testing.T) {
		client := &mockClient{
			generateFunc: func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
				return nil, errors.New("provider unavailable")
			},
		}
		o := newTestOrchestrator(t, nil, client, nil, Options{})

		res := o.GenerateSingle(ctx, domain.GenerationRequest{Action: "eating lunch"})

		assert.False(t, res.Success)
		assert.Nil(t, res.Image)
		assert.Contains(t, res.Error, "provider unavailable")
		// 失敗時もメタデータは診断のために残す
		require.NotNil(t, res.Metadata)
		assert.Equal(t, "eating lunch", res.Metadata.Action)
		assert.NotEmpty(t, res.Metadata.Prompt)
	})

	t.Run("成功: シードとネガティブプロンプトはクライアントまで伝播する", func(t *testing.T) {
		var gotExtras domain.GenerationExtras
		var gotSize string
		client := &mockClient{
			generateFunc: func(ctx context.Context, prompt, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
				gotExtras = extras
				gotSize = size
				return &domain.ImageRef{Data: []byte("ok"), MimeType: "image/png"}, nil
			},
		}
		o := newTestOrchestrator(t, nil, client, nil, Options{})

		seed := int64(99)
		res := o.GenerateSingle(ctx, domain.GenerationRequest{
			Action:         "getting dressed",
			Size:           "1024x768",
			NegativePrompt: "scary elements",
			Seed:           &seed,
			Steps:          25,
		})

		require.True(t, res.Success)
		assert.Equal(t, "1024x768", gotSize)
		assert.Equal(t, "scary elements", gotExtras.NegativePrompt)
		require.NotNil(t, gotExtras.Seed)
		assert.Equal(t, seed, *gotExtras.Seed)
		assert.Equal(t, 25, gotExtras.Steps)
	})

	t.Run("失敗: キャンセル済みコンテキストはレートリミッタで止まる", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		client := &mockClient{}
		o := newTestOrchestrator(t, nil, client, nil, Options{Limiter: newBlockingLimiter()})

		res := o.GenerateSingle(canceled, domain.GenerationRequest{Action: "reading"})

		assert.False(t, res.Success)
		assert.Equal(t, 0, client.callCount())
	})
}
