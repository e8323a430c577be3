package domain

import "time"

// GenerationRequest は単一の画像生成要求です。
// Action 以外の項目は省略可能で、未指定のスタイル名・品質名は
// カタログ側の既定値に解決されます。呼び出し側で構築された後は変更されません。
type GenerationRequest struct {
	Action         string
	StylePreset    string
	QualityLevel   string
	CustomStyle    string
	Size           string // "768x768" 等。空なら Orchestrator の既定値
	NegativePrompt string
	Seed           *int64 // nil でランダム、値指定で固定
	Steps          int    // 0 でプロバイダ既定
}

// GenerationExtras はプロバイダ呼び出しに付随する任意パラメータです。
type GenerationExtras struct {
	NegativePrompt string
	Seed           *int64
	Steps          int
}

// GenerationParameters は生成時に実際に使用されたパラメータの記録です。
type GenerationParameters struct {
	Size           string
	NegativePrompt string
	Seed           *int64
	Steps          int
}

// GenerationMetadata は1回の生成に関するトレーサビリティ情報です。
// StylePreset と QualityLevel はフォールバック解決後の名前を保持します。
type GenerationMetadata struct {
	Action       string
	StylePreset  string
	QualityLevel string
	Prompt       string
	GeneratedAt  time.Time
	Parameters   GenerationParameters
}

// ImageRef は生成された画像データとそのエンコーディングです。
// プロバイダがインラインデータを返した場合もロケータURLを返した場合も、
// クライアント層で必ずこの形に正規化されるため、下流はプロバイダ固有の
// 形式を意識する必要がありません。
type ImageRef struct {
	Data      []byte
	MimeType  string
	SourceURL string // ロケータ経由で取得した場合の元URL
}

// GenerationResult は1件の生成の成否と内容です。
// Success が true のとき Image が、false のとき Error が必ず設定されます。
type GenerationResult struct {
	Success  bool
	Image    *ImageRef
	Error    string
	Metadata *GenerationMetadata
}
