package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/visual-aid-kit/pkg/domain"
	"github.com/shouni/visual-aid-kit/pkg/imgutil"
)

const (
	// UseImageCompression は閾値超過ペイロードの JPEG 再圧縮の有効/無効です。
	UseImageCompression     = true
	ImageCompressionQuality = 75

	// compressionThresholdBytes を超えるペイロードだけを再圧縮の対象にします。
	compressionThresholdBytes = 1 << 20

	cacheKeyLocator = "locator:"
)

// FetchCore はロケータURLから画像データを取得して ImageRef に正規化する共通基盤です。
// gs:// は InputReader 経由、http(s) は SSRF 検証のうえ httpkit 経由で取得します。
type FetchCore struct {
	reader     remoteio.InputReader
	httpClient httpkit.ClientInterface
	cache      ImageCacher
	expiration time.Duration
}

// NewFetchCore は依存関係を注入して FetchCore を初期化します。
// reader は nil を許容します（gs:// ロケータ非対応の構成）。
// cache も nil を許容します（キャッシュなし動作）。
func NewFetchCore(reader remoteio.InputReader, httpClient httpkit.ClientInterface, cache ImageCacher, cacheTTL time.Duration) (*FetchCore, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &FetchCore{
		reader:     reader,
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// FetchImage はロケータURLの指す画像を取得し、ImageRef に正規化して返します。
// 失敗はすべて *TransportError です。
func (c *FetchCore) FetchImage(ctx context.Context, rawURL string) (*domain.ImageRef, error) {
	if c.cache != nil {
		if val, ok := c.cache.Get(cacheKeyLocator + rawURL); ok {
			if ref, ok := val.(*domain.ImageRef); ok {
				return ref, nil
			}
		}
	}

	data, err := c.fetchBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	ref, err := c.toRef(data, rawURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(cacheKeyLocator+rawURL, ref, c.expiration)
	}
	return ref, nil
}

func (c *FetchCore) fetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		if c.reader == nil {
			return nil, &TransportError{Op: "fetch", Message: "gs:// ロケータ用のリーダーが設定されていません"}
		}
		rc, err := c.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, &TransportError{Op: "fetch", Message: "gs:// ロケータの取得に失敗しました", Err: err}
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, &TransportError{Op: "fetch", Message: "gs:// ロケータの読み込みに失敗しました", Err: err}
		}
		return data, nil
	}

	if safe, err := IsSafeURL(rawURL); err != nil || !safe {
		return nil, &TransportError{Op: "fetch", Message: "安全ではないロケータURLが指定されました", Err: err}
	}
	data, err := c.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, &TransportError{Op: "fetch", Message: "ロケータURLのダウンロードに失敗しました", Err: err}
	}
	return data, nil
}

// toRef はバイト列を検証し、必要なら再圧縮して ImageRef に変換します。
func (c *FetchCore) toRef(data []byte, sourceURL string) (*domain.ImageRef, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, &TransportError{Op: "fetch", Message: fmt.Sprintf("取得データが画像ではありません (MIME: %s)", mimeType)}
	}

	if UseImageCompression {
		if shrunk, applied := imgutil.ShrinkOversized(data, compressionThresholdBytes, ImageCompressionQuality); applied {
			data = shrunk
			mimeType = "image/jpeg"
		}
	}

	return &domain.ImageRef{
		Data:      data,
		MimeType:  mimeType,
		SourceURL: sourceURL,
	}, nil
}
