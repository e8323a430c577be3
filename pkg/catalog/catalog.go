package catalog

// StylePreset は名前付きの視覚スタイル定義です。
// プロンプトに注入する記述句の束であり、生成後は一切変更されません。
type StylePreset struct {
	Name         string
	BaseStyle    string
	ColorPalette string
	Composition  string
	Lighting     string
	Details      string
}

// QualityLevel は描画の丁寧さ・親しみやすさを表す名前付き記述子です。
type QualityLevel struct {
	Name       string
	Descriptor string
}

const (
	// DefaultStyleName は未知のスタイル名に対するフォールバック先です。
	DefaultStyleName = "autism-friendly"
	// DefaultQualityName は未知の品質名に対するフォールバック先です。
	DefaultQualityName = "child-friendly"
)

// Catalog はスタイルと品質レベルの不変レジストリです。
// プロセス起動時に一度だけ構築して参照で受け渡し、以後は読み取り専用で
// 共有できます（内部に可変状態を持ちません）。
type Catalog struct {
	styles       map[string]StylePreset
	styleOrder   []string
	qualities    map[string]QualityLevel
	qualityOrder []string
}

var defaultCatalog = buildDefaultCatalog()

// Default は組み込みのカタログを返します。
func Default() *Catalog {
	return defaultCatalog
}

// Style は名前からスタイルプリセットを引きます。
// 未知の名前でも失敗せず、既定プリセット（autism-friendly）を返します。
func (c *Catalog) Style(name string) StylePreset {
	if preset, ok := c.styles[name]; ok {
		return preset
	}
	return c.styles[DefaultStyleName]
}

// Quality は名前から品質レベルを引きます。未知の名前は既定（child-friendly）です。
func (c *Catalog) Quality(name string) QualityLevel {
	if q, ok := c.qualities[name]; ok {
		return q
	}
	return c.qualities[DefaultQualityName]
}

// QualityDescriptor は品質レベルの記述句のみを返します。
func (c *Catalog) QualityDescriptor(name string) string {
	return c.Quality(name).Descriptor
}

// ListStyles は定義済みスタイルを定義順で返します（UI の選択肢提示用）。
func (c *Catalog) ListStyles() []StylePreset {
	out := make([]StylePreset, 0, len(c.styleOrder))
	for _, name := range c.styleOrder {
		out = append(out, c.styles[name])
	}
	return out
}

// ListQualityLevels は定義済み品質レベルを定義順で返します。
func (c *Catalog) ListQualityLevels() []QualityLevel {
	out := make([]QualityLevel, 0, len(c.qualityOrder))
	for _, name := range c.qualityOrder {
		out = append(out, c.qualities[name])
	}
	return out
}

func buildDefaultCatalog() *Catalog {
	styles := []StylePreset{
		{
			Name:         "autism-friendly",
			BaseStyle:    "simple flat illustration with clean bold outlines",
			ColorPalette: "soft muted colors with low saturation and gentle pastel tones",
			Composition:  "single centered subject on a plain uncluttered background",
			Lighting:     "even diffuse lighting without harsh shadows",
			Details:      "minimal background detail and clear facial expressions",
		},
		{
			Name:         "visual-schedule",
			BaseStyle:    "flat pictogram style illustration",
			ColorPalette: "limited high-contrast palette of four to six colors",
			Composition:  "one activity per frame, centered with generous margins",
			Lighting:     "flat uniform lighting",
			Details:      "bold outlines and no decorative clutter",
		},
		{
			Name:         "social-story",
			BaseStyle:    "warm storybook illustration",
			ColorPalette: "natural warm colors with soft contrast",
			Composition:  "characters shown mid-activity in a recognizable everyday setting",
			Lighting:     "soft natural daylight",
			Details:      "friendly expressive faces and familiar everyday objects",
		},
		{
			Name:         "instructional-sequence",
			BaseStyle:    "step-by-step instructional illustration",
			ColorPalette: "consistent soft primary colors across all steps",
			Composition:  "clear view of the hands and objects involved in the step",
			Lighting:     "bright even lighting",
			Details:      "visual emphasis on the key object of the step",
		},
		{
			Name:         "cartoon",
			BaseStyle:    "cheerful cartoon illustration",
			ColorPalette: "bright friendly primary colors",
			Composition:  "playful centered composition",
			Lighting:     "vibrant even lighting",
			Details:      "rounded shapes and expressive characters",
		},
		{
			Name:         "realistic",
			BaseStyle:    "realistic illustration with natural proportions",
			ColorPalette: "true-to-life colors",
			Composition:  "everyday scene framed at child eye level",
			Lighting:     "natural lighting",
			Details:      "realistic textures kept simple and readable",
		},
		{
			Name:         "minimalist",
			BaseStyle:    "minimalist line illustration",
			ColorPalette: "monochrome palette with a single accent color",
			Composition:  "isolated subject with abundant white space",
			Lighting:     "flat lighting",
			Details:      "only the essential elements drawn",
		},
	}

	qualities := []QualityLevel{
		{Name: "child-friendly", Descriptor: "gentle approachable rendering suitable for young children"},
		{Name: "standard", Descriptor: "clean balanced rendering"},
		{Name: "high-detail", Descriptor: "rich detail with careful rendering of textures"},
		{Name: "premium", Descriptor: "finely polished print-ready rendering"},
	}

	c := &Catalog{
		styles:    make(map[string]StylePreset, len(styles)),
		qualities: make(map[string]QualityLevel, len(qualities)),
	}
	for _, s := range styles {
		c.styles[s.Name] = s
		c.styleOrder = append(c.styleOrder, s.Name)
	}
	for _, q := range qualities {
		c.qualities[q.Name] = q
		c.qualityOrder = append(c.qualityOrder, q.Name)
	}
	return c
}
