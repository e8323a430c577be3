package pipeline

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// contextPhrases は生活場面ごとにシナリオへ付与する修飾句です。
var contextPhrases = map[string]string{
	"home":      "at home in a familiar domestic setting",
	"school":    "at school in a classroom setting",
	"community": "in a community setting like a park or store",
	"therapy":   "in a calm therapy room setting",
}

// GenerateSocialStoryImages は1つのシナリオを複数の生活場面で描き分けます。
// スタイルは social-story、品質は high-detail に固定します。
// ソーシャルストーリーは表情や状況の読み取りが目的のため、
// 省略の多い画風では教材として機能しないのだ。
func (o *Orchestrator) GenerateSocialStoryImages(ctx context.Context, scenario string, contexts []string, base domain.GenerationRequest) *domain.SocialStorySet {
	images := make([]domain.StoryImage, len(contexts))

	var g errgroup.Group
	g.SetLimit(o.opts.MaxConcurrent)

	for i, c := range contexts {
		g.Go(func() error {
			req := base
			req.Action = contextualScenario(scenario, c)
			req.StylePreset = "social-story"
			req.QualityLevel = "high-detail"
			res := o.GenerateSingle(ctx, req)
			images[i] = domain.StoryImage{
				Context:          c,
				Scenario:         req.Action,
				GenerationResult: *res,
			}
			return nil
		})
	}
	g.Wait()

	successful := lo.CountBy(images, func(img domain.StoryImage) bool { return img.Success })

	return &domain.SocialStorySet{
		Scenario: scenario,
		Images:   images,
		Success:  successful == len(contexts),
		Summary: domain.GenerationSummary{
			Total:      len(contexts),
			Successful: successful,
			Failed:     len(contexts) - successful,
		},
	}
}

// contextualScenario はシナリオ文を保ったまま場面修飾を付与します。
func contextualScenario(scenario, context string) string {
	phrase, ok := contextPhrases[context]
	if !ok {
		phrase = fmt.Sprintf("in a %s setting", context)
	}
	return fmt.Sprintf("%s, %s", scenario, phrase)
}
