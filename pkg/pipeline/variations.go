package pipeline

import (
	"context"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// GenerateVariations は同じ行動を複数のスタイルで並行生成します。
// 結果は常に要求されたスタイル順に並びます。完了順ではありません。
// 1スタイルの失敗は他のスタイルの生成を中断しないのだ。
func (o *Orchestrator) GenerateVariations(ctx context.Context, action string, styles []string, base domain.GenerationRequest) *domain.VariationSet {
	results := make([]domain.VariationResult, len(styles))

	// WithContext は使わない。1件の失敗で兄弟の生成をキャンセルしたくないため。
	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrent)

	for i, style := range styles {
		g.Go(func() error {
			req := base
			req.Action = action
			req.StylePreset = style
			res := o.GenerateSingle(ctx, req)
			results[i] = domain.VariationResult{
				Style:            o.catalog.Style(style).Name,
				GenerationResult: *res,
			}
			return nil
		})
	}
	g.Wait()

	var merr *multierror.Error
	for _, r := range results {
		if !r.Success {
			merr = multierror.Append(merr, &variationFailure{style: r.Style, message: r.Error})
		}
	}
	if merr != nil {
		slog.WarnContext(ctx, "一部のスタイルで生成に失敗しました",
			"action", action, "failures", merr.Len(), "error", merr)
	}

	successful := lo.CountBy(results, func(r domain.VariationResult) bool { return r.Success })

	return &domain.VariationSet{
		Action:  action,
		Results: results,
		Success: successful == len(styles),
		Summary: domain.GenerationSummary{
			Total:      len(styles),
			Successful: successful,
			Failed:     len(styles) - successful,
		},
	}
}

// variationFailure はログ集約用にスタイル名付きで失敗を表現します。
type variationFailure struct {
	style   string
	message string
}

func (f *variationFailure) Error() string {
	return f.style + ": " + f.message
}
