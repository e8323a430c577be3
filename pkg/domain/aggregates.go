package domain

// GenerationSummary は一括生成の成否の集計です。
type GenerationSummary struct {
	Total      int
	Successful int
	Failed     int
}

// VariationResult は1スタイル分の生成結果です。
type VariationResult struct {
	Style string
	GenerationResult
}

// VariationSet はスタイル別バリエーションの生成結果一式です。
// Results の並びは要求されたスタイルの並びと常に一致します。
// Success は全要素の成功の論理積です（互換性維持のための仕様。
// 部分的成功の内訳は Summary で判別できます）。
type VariationSet struct {
	Action  string
	Results []VariationResult
	Success bool
	Summary GenerationSummary
}

// SequenceStep は難易度レベル1段分の生成結果です。
// Level と、レベル修飾を加えた後の Action をそのまま記録します。
type SequenceStep struct {
	Level  string
	Action string
	GenerationResult
}

// ProgressiveSequence は段階的な難易度で生成した一連の画像です。
// Steps の並びは要求されたレベルの並びと一致します。
type ProgressiveSequence struct {
	BaseAction string
	Steps      []SequenceStep
	Success    bool
	Summary    GenerationSummary
}

// StoryImage は1つの生活場面（家庭・学校・地域など）での生成結果です。
type StoryImage struct {
	Context  string
	Scenario string // 場面修飾を加えた後のシナリオ文
	GenerationResult
}

// SocialStorySet はソーシャルストーリー用の場面別画像一式です。
// Images の並びは要求された場面の並びと一致します。
type SocialStorySet struct {
	Scenario string
	Images   []StoryImage
	Success  bool
	Summary  GenerationSummary
}

// BatchItemResult は品質管理付きバッチ生成における1アクション分の最終結果です。
// リトライが尽きた場合でも必ず結果を持ちます。
type BatchItemResult struct {
	Action       string
	QualityScore float64
	AttemptsUsed int
	GenerationResult
}

// BatchReport はバッチ全体の結果と集計です。
type BatchReport struct {
	Items           []BatchItemResult
	Total           int
	Successful      int
	AverageAttempts float64
}
