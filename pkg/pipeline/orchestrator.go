package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/shouni/visual-aid-kit/pkg/catalog"
	"github.com/shouni/visual-aid-kit/pkg/domain"
)

// PromptComposer はプロンプト構築のロジックを抽象化します。
type PromptComposer interface {
	Build(req domain.GenerationRequest) string
}

// ImageClient は画像生成プロバイダへのインターフェースです。
type ImageClient interface {
	Generate(ctx context.Context, prompt string, size string, extras domain.GenerationExtras) (*domain.ImageRef, error)
}

// Assessor は生成結果の構造的完全性を採点するインターフェースです。
type Assessor interface {
	Assess(result *domain.GenerationResult) float64
}

const (
	defaultMaxConcurrent = 3
	defaultSize          = "768x768"
)

// Options は Orchestrator の動作設定です。
type Options struct {
	// MaxConcurrent はファンアウト生成時の同時実行数上限です（0以下で既定値 3）。
	// レート制限のあるプロバイダを圧迫しないための明示的な上限です。
	MaxConcurrent int

	// Limiter はプロバイダ呼び出しのレートリミッタです。nil で制限なし。
	Limiter *rate.Limiter

	// CallTimeout は1回の生成呼び出しに適用するタイムアウトです（0 で無効）。
	// 期限切れは他の通信失敗と同じ経路で success:false の結果になります。
	CallTimeout time.Duration

	// SeedFn はリトライ時に引き直す乱数シードの供給源です。
	// テストでの決定性のために注入可能にしてあります（nil で時刻ベース）。
	SeedFn func() int64

	// DefaultSize は要求にサイズ指定がないときの既定値です（空で "768x768"）。
	DefaultSize string
}

// Orchestrator は画像生成の制御ロジックの中枢です。
// 単発生成、スタイル別ファンアウト、段階的シーケンス、場面別セット、
// 品質管理付きバッチをこの1つの型が提供します。
// 自身は可変状態を持たないため、複数ゴルーチンから共有して構いません。
type Orchestrator struct {
	composer PromptComposer
	client   ImageClient
	assessor Assessor
	catalog  *catalog.Catalog
	opts     Options
}

// New は依存関係を注入して Orchestrator を初期化します。
func New(composer PromptComposer, client ImageClient, assessor Assessor, cat *catalog.Catalog, opts Options) (*Orchestrator, error) {
	if composer == nil {
		return nil, fmt.Errorf("composer is required")
	}
	if client == nil {
		return nil, fmt.Errorf("client (ImageClient) is required")
	}
	if assessor == nil {
		return nil, fmt.Errorf("assessor is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.DefaultSize == "" {
		opts.DefaultSize = defaultSize
	}
	if opts.SeedFn == nil {
		// 並行利用されるためロック付きのグローバル乱数源を使う
		opts.SeedFn = rand.Int63
	}

	return &Orchestrator{
		composer: composer,
		client:   client,
		assessor: assessor,
		catalog:  cat,
		opts:     opts,
	}, nil
}
