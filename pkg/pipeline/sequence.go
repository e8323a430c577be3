package pipeline

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// SequenceLevels は段階的シーケンスの既定の難易度段階です。
var SequenceLevels = []string{"simple", "intermediate", "complex"}

// levelQualifiers は難易度段階ごとにプロンプトへ付与する修飾句です。
// 療育現場のスモールステップ（課題の細分化）に対応させています。
var levelQualifiers = map[string]string{
	"simple":       "very simple version with minimal elements, single clear focus",
	"intermediate": "moderately detailed version with a few supporting elements",
	"complex":      "detailed version showing the full context and all steps",
}

// GenerateProgressiveSequence は同じ行動を段階的な詳しさで生成します。
// スタイルは instructional-sequence に固定し、段階間の視覚的一貫性を保ちます。
func (o *Orchestrator) GenerateProgressiveSequence(ctx context.Context, baseAction string, levels []string, base domain.GenerationRequest) *domain.ProgressiveSequence {
	if len(levels) == 0 {
		levels = SequenceLevels
	}

	steps := make([]domain.SequenceStep, len(levels))

	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrent)

	for i, level := range levels {
		g.Go(func() error {
			req := base
			req.Action = derivedAction(baseAction, level)
			req.StylePreset = "instructional-sequence"
			res := o.GenerateSingle(ctx, req)
			steps[i] = domain.SequenceStep{
				Level:            level,
				Action:           req.Action,
				GenerationResult: *res,
			}
			return nil
		})
	}
	g.Wait()

	successful := lo.CountBy(steps, func(s domain.SequenceStep) bool { return s.Success })

	return &domain.ProgressiveSequence{
		BaseAction: baseAction,
		Steps:      steps,
		Success:    successful == len(levels),
		Summary: domain.GenerationSummary{
			Total:      len(levels),
			Successful: successful,
			Failed:     len(levels) - successful,
		},
	}
}

// derivedAction は元の行動名を保ったまま段階修飾を付与します。
func derivedAction(baseAction, level string) string {
	qualifier, ok := levelQualifiers[level]
	if !ok {
		qualifier = fmt.Sprintf("%s version", level)
	}
	return fmt.Sprintf("%s, %s", baseAction, qualifier)
}
