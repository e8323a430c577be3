package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// GeminiImageClient は Gemini をプロバイダとして利用する ImageClient 実装です。
// サイズ指定はアスペクト比に変換して渡します。Steps はこのプロバイダに
// 対応する概念がないため無視されます。
type GeminiImageClient struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiImageClient は依存関係を注入して GeminiImageClient を初期化します。
func NewGeminiImageClient(aiClient gemini.GenerativeModel, model string) (*GeminiImageClient, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &GeminiImageClient{
		aiClient: aiClient,
		model:    model,
	}, nil
}

// Generate はプロンプトを Gemini に送信し、最初の候補のインライン画像を返します。
func (g *GeminiImageClient) Generate(ctx context.Context, prompt string, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
	// ネガティブプロンプトに相当するフィールドがないため、回避指示として連結する
	finalPrompt := prompt
	if extras.NegativePrompt != "" {
		finalPrompt = prompt + ". Avoid: " + extras.NegativePrompt
	}

	parts := []*genai.Part{{Text: finalPrompt}}
	opts := gemini.GenerateOptions{
		AspectRatio: SizeToAspectRatio(size),
		Seed:        extras.Seed,
	}

	resp, err := g.aiClient.GenerateWithParts(ctx, g.model, parts, opts)
	if err != nil {
		return nil, &TransportError{Op: "generate", Message: "Gemini生成リクエストに失敗しました", Err: err}
	}

	return parseToRef(resp)
}

// parseToRef は Gemini のレスポンスから最初のインライン画像を取り出します。
func parseToRef(resp *gemini.Response) (*domain.ImageRef, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, &TransportError{Op: "generate", Message: "Geminiからの有効な応答がありませんでした"}
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageRef{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &TransportError{Op: "generate", Message: fmt.Sprintf("画像生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)}
	}

	return nil, &TransportError{Op: "generate", Message: "画像データが見つかりませんでした"}
}
