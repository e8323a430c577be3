package quality

import "github.com/shouni/visual-aid-kit/pkg/domain"

// Assessor は生成結果に対して [0, 1] のスコアを与えます。
type Assessor interface {
	Assess(result *domain.GenerationResult) float64
}

const (
	baseScore    = 0.5
	imageBonus   = 0.3
	promptBonus  = 0.1
	payloadBonus = 0.1

	// MinPlausiblePayloadBytes は画像として妥当なペイロードとみなす下限です。
	// これを下回るデータはプレースホルダや破損の可能性が高いと判断します。
	MinPlausiblePayloadBytes = 1024
)

// StructuralAssessor は構造的な完全性のみを確認するヒューリスティックです。
// 「画像が得られたか」「メタデータが揃っているか」を測るものであって、
// 知覚的・芸術的な品質は一切測りません。スコアを美的品質として解釈しないこと。
type StructuralAssessor struct{}

// Assess は結果を採点します。戻り値は常に [0, 1] に収まります。
func (StructuralAssessor) Assess(result *domain.GenerationResult) float64 {
	score := baseScore
	if result == nil {
		return score
	}

	if result.Success && result.Image != nil {
		score += imageBonus
	}
	if result.Metadata != nil && result.Metadata.Prompt != "" {
		score += promptBonus
	}
	if result.Image != nil && len(result.Image.Data) > MinPlausiblePayloadBytes {
		score += payloadBonus
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
