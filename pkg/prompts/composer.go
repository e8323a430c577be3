package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/visual-aid-kit/pkg/catalog"
	"github.com/shouni/visual-aid-kit/pkg/domain"
)

const (
	// SuitabilityClause は対象児に適した画面構成を常に要求する固定句です。
	SuitabilityClause = "designed for children with autism spectrum disorder, calm and predictable visual structure"

	// NoTextClause は画像内の文字を禁止する固定句です。
	// 文字の読めない利用者への配慮であり、入力に関わらず必ず付与されます。
	NoTextClause = "no text, labels, or written words in the image"

	segmentSeparator = ", "
)

// Composer は構造化された生成要求から決定的にプロンプト文字列を組み立てます。
// 副作用を持たず、同じ要求に対して常に同じ文字列を返します。
type Composer struct {
	catalog *catalog.Catalog
}

// NewComposer はカタログを注入して Composer を初期化します。
func NewComposer(c *catalog.Catalog) (*Composer, error) {
	if c == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	return &Composer{catalog: c}, nil
}

// Build はプロンプトを組み立てます。セグメントの順序は固定で、
// 主題句、スタイル句群、品質句、任意の自由記述、末尾の2固定句の順です。
// 末尾の2句（対象適合句とテキスト禁止句）は入力に関わらず必ず1回ずつ含まれます。
func (c *Composer) Build(req domain.GenerationRequest) string {
	style := c.catalog.Style(req.StylePreset)
	qualityDescriptor := c.catalog.QualityDescriptor(req.QualityLevel)

	segments := make([]string, 0, 10)
	segments = append(segments,
		fmt.Sprintf("a clear simple illustration of %s", strings.TrimSpace(req.Action)),
		style.BaseStyle,
		"color palette: "+style.ColorPalette,
		style.Composition,
		style.Lighting,
		style.Details,
		qualityDescriptor,
	)

	if custom := strings.TrimSpace(req.CustomStyle); custom != "" {
		segments = append(segments, custom)
	}

	segments = append(segments, SuitabilityClause, NoTextClause)

	return joinNonEmpty(segments, segmentSeparator)
}

func joinNonEmpty(segments []string, sep string) string {
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, sep)
}
