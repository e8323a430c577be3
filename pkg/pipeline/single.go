package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// GenerateSingle は1件の生成を実行します。
// 想定内の失敗（検証・通信）は error として返さず、常に success:false の
// 構造化された結果として返します。呼び出し側は部分的な失敗をそのまま
// 表示に反映できます。
func (o *Orchestrator) GenerateSingle(ctx context.Context, req domain.GenerationRequest) *domain.GenerationResult {
	meta := o.buildMetadata(req)

	// ネットワークに触れる前の検証
	if strings.TrimSpace(req.Action) == "" {
		return &domain.GenerationResult{
			Success:  false,
			Error:    "validation: action が指定されていません",
			Metadata: meta,
		}
	}

	prompt := o.composer.Build(req)
	meta.Prompt = prompt

	if o.opts.Limiter != nil {
		if err := o.opts.Limiter.Wait(ctx); err != nil {
			return &domain.GenerationResult{Success: false, Error: err.Error(), Metadata: meta}
		}
	}

	callCtx := ctx
	if o.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.opts.CallTimeout)
		defer cancel()
	}

	extras := domain.GenerationExtras{
		NegativePrompt: req.NegativePrompt,
		Seed:           req.Seed,
		Steps:          req.Steps,
	}
	ref, err := o.client.Generate(callCtx, prompt, meta.Parameters.Size, extras)
	if err != nil {
		slog.WarnContext(ctx, "画像生成に失敗しました",
			"action", req.Action, "style", meta.StylePreset, "error", err)
		return &domain.GenerationResult{Success: false, Error: err.Error(), Metadata: meta}
	}

	return &domain.GenerationResult{Success: true, Image: ref, Metadata: meta}
}

// buildMetadata はフォールバック解決後の名前と使用パラメータを記録します。
func (o *Orchestrator) buildMetadata(req domain.GenerationRequest) *domain.GenerationMetadata {
	size := req.Size
	if size == "" {
		size = o.opts.DefaultSize
	}
	return &domain.GenerationMetadata{
		Action:       req.Action,
		StylePreset:  o.catalog.Style(req.StylePreset).Name,
		QualityLevel: o.catalog.Quality(req.QualityLevel).Name,
		GeneratedAt:  time.Now(),
		Parameters: domain.GenerationParameters{
			Size:           size,
			NegativePrompt: req.NegativePrompt,
			Seed:           req.Seed,
			Steps:          req.Steps,
		},
	}
}
