package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

const generationPath = "/v1/images/generations"

// HTTPImageClient は汎用の text-to-image HTTP/JSON エンドポイント用クライアントです。
// 認証の付与、リクエストの直列化、レスポンスの復元のみを担い、
// リトライ等のビジネス判断は行いません。
type HTTPImageClient struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	core        *FetchCore
	callTimeout time.Duration
}

// HTTPClientOptions は HTTPImageClient の初期化パラメータです。
type HTTPClientOptions struct {
	BaseURL     string
	APIKey      string
	HTTPClient  *http.Client
	Core        *FetchCore
	CallTimeout time.Duration // 0 で無効
}

// NewHTTPImageClient は依存関係を注入して HTTPImageClient を初期化します。
func NewHTTPImageClient(opts HTTPClientOptions) (*HTTPImageClient, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if opts.Core == nil {
		return nil, fmt.Errorf("core (FetchCore) is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPImageClient{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		httpClient:  httpClient,
		core:        opts.Core,
		callTimeout: opts.CallTimeout,
	}, nil
}

type generateImageRequest struct {
	Prompt         string `json:"prompt"`
	Size           string `json:"size,omitempty"`
	N              int    `json:"n"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
	Steps          int    `json:"steps,omitempty"`
}

type generateImageResponse struct {
	Images []generatedImage `json:"images"`
}

type generatedImage struct {
	B64JSON  string `json:"b64_json,omitempty"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Generate はプロンプトを送信し、レスポンスを ImageRef に正規化して返します。
// インラインデータ形式とロケータURL形式の両方を受け付けます。
// タイムアウト切れも他の通信失敗と同じ *TransportError として返します。
func (c *HTTPImageClient) Generate(ctx context.Context, prompt string, size string, extras domain.GenerationExtras) (*domain.ImageRef, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	payload := generateImageRequest{
		Prompt:         prompt,
		Size:           size,
		N:              1,
		NegativePrompt: extras.NegativePrompt,
		Seed:           extras.Seed,
		Steps:          extras.Steps,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: "generate", Message: "リクエストの直列化に失敗しました", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generationPath, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "generate", Message: "リクエストの構築に失敗しました", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "generate", Message: "リクエスト送信に失敗しました", Err: err}
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Op: "generate", Message: "レスポンスの読み込みに失敗しました", Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &TransportError{
			Op:         "generate",
			StatusCode: httpResp.StatusCode,
			Message:    strings.TrimSpace(string(rawBody)),
		}
	}

	var decoded generateImageResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return nil, &TransportError{Op: "generate", Message: "レスポンスの解析に失敗しました", Err: err}
	}
	if len(decoded.Images) == 0 {
		return nil, &TransportError{Op: "generate", Message: "レスポンスに画像が含まれていません"}
	}

	return c.normalize(ctx, decoded.Images[0])
}

// normalize はプロバイダの2形式（インライン / ロケータ）を ImageRef に揃えます。
func (c *HTTPImageClient) normalize(ctx context.Context, img generatedImage) (*domain.ImageRef, error) {
	switch {
	case img.B64JSON != "":
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, &TransportError{Op: "generate", Message: "インライン画像データの復号に失敗しました", Err: err}
		}
		mimeType := img.MimeType
		if mimeType == "" {
			mimeType = http.DetectContentType(data)
		}
		return &domain.ImageRef{Data: data, MimeType: mimeType}, nil

	case img.URL != "":
		return c.core.FetchImage(ctx, img.URL)

	default:
		return nil, &TransportError{Op: "generate", Message: "画像データもロケータURLも含まれていません"}
	}
}
