package generator

import (
	"context"
	"time"

	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// ImageClient は画像生成プロバイダへの統合窓口です。
// 返すエラーは必ず *TransportError であり、プロバイダ固有の画像形式
// （インラインデータ / ロケータURL）は実装側で domain.ImageRef に正規化されます。
type ImageClient interface {
	Generate(ctx context.Context, prompt string, size string, extras domain.GenerationExtras) (*domain.ImageRef, error)
}

// ImageCacher は取得済み画像データをキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}
