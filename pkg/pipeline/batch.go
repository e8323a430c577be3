package pipeline

import (
	"context"
	"log/slog"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// BatchOptions は品質管理付きバッチ生成の設定です。
// ゼロ値も有効な設定として扱います（閾値 0 は「成功すれば常に合格」）。
// 一般的な既定値が欲しい場合は DefaultBatchOptions を使ってください。
type BatchOptions struct {
	// MaxRetries は初回の試行に追加して許容するリトライ回数です。
	MaxRetries int

	// QualityThreshold は合格と見なす最低スコアです（0.0〜1.0）。
	QualityThreshold float64
}

// DefaultBatchOptions は実運用向けの既定値を返します。
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{
		MaxRetries:       2,
		QualityThreshold: 0.7,
	}
}

// BatchGenerateWithQualityControl は複数アクションを逐次生成し、
// スコアが閾値を下回った要素だけをリトライします。
// リトライ上限に達した場合でも最後の試行結果を必ず報告に含めます。
// コンテキストが取り消された場合、未着手のアクションは失敗として埋めます。
func (o *Orchestrator) BatchGenerateWithQualityControl(ctx context.Context, actions []string, base domain.GenerationRequest, batchOpts BatchOptions) *domain.BatchReport {
	items := make([]domain.BatchItemResult, 0, len(actions))
	totalAttempts := 0
	successful := 0

	for i, action := range actions {
		if ctx.Err() != nil {
			// 残りのアクションを未試行の失敗として埋める
			for _, remaining := range actions[i:] {
				items = append(items, domain.BatchItemResult{
					Action: remaining,
					GenerationResult: domain.GenerationResult{
						Success: false,
						Error:   ctx.Err().Error(),
					},
				})
			}
			break
		}

		item := o.generateWithRetries(ctx, action, base, batchOpts)
		totalAttempts += item.AttemptsUsed
		if item.Success {
			successful++
		}
		items = append(items, item)
	}

	average := 0.0
	if len(actions) > 0 {
		average = float64(totalAttempts) / float64(len(actions))
	}

	return &domain.BatchReport{
		Items:           items,
		Total:           len(actions),
		Successful:      successful,
		AverageAttempts: average,
	}
}

// generateWithRetries は1アクションを品質閾値を満たすまで生成します。
// リトライごとにシードを引き直し、同じ失敗画像の再生成を避けます。
func (o *Orchestrator) generateWithRetries(ctx context.Context, action string, base domain.GenerationRequest, batchOpts BatchOptions) domain.BatchItemResult {
	var (
		result *domain.GenerationResult
		score  float64
	)

	attempts := 0
	for {
		req := base
		req.Action = action
		if attempts > 0 {
			// リトライ時は新しいシードで変化を促す
			seed := o.opts.SeedFn()
			req.Seed = &seed
		}

		result = o.GenerateSingle(ctx, req)
		score = o.assessor.Assess(result)

		accepted := result.Success && score >= batchOpts.QualityThreshold
		if accepted || attempts >= batchOpts.MaxRetries || ctx.Err() != nil {
			break
		}

		slog.InfoContext(ctx, "品質スコアが閾値未満のためリトライします",
			"action", action, "score", score,
			"threshold", batchOpts.QualityThreshold, "attempt", attempts+1)
		attempts++
	}

	return domain.BatchItemResult{
		Action:           action,
		QualityScore:     score,
		AttemptsUsed:     attempts + 1,
		GenerationResult: *result,
	}
}
