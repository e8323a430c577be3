// visualaidgen は視覚支援教材の画像を生成するコマンドラインツールです。
// 単発生成のほか、スタイル別バリエーション、段階的シーケンス、
// 場面別ソーシャルストーリー、品質管理付きバッチをサポートします。
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"golang.org/x/time/rate"

	"github.com/shouni/visual-aid-kit/pkg/catalog"
	"github.com/shouni/visual-aid-kit/pkg/config"
	"github.com/shouni/visual-aid-kit/pkg/domain"
	"github.com/shouni/visual-aid-kit/pkg/generator"
	"github.com/shouni/visual-aid-kit/pkg/pipeline"
	"github.com/shouni/visual-aid-kit/pkg/prompts"
	"github.com/shouni/visual-aid-kit/pkg/quality"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", "error", err)
		os.Exit(1)
	}
}

func runMain() error {
	// .env はあれば読む。なくてもエラーにしない。
	_ = godotenv.Load()

	var (
		mode     = flag.String("mode", "single", "生成モード (single|variations|sequence|story|batch)")
		action   = flag.String("action", "", "描画する行動・場面")
		style    = flag.String("style", "", "スタイルプリセット名")
		qualityL = flag.String("quality", "", "品質レベル名")
		styles   = flag.String("styles", "autism-friendly,visual-schedule,cartoon", "variationsモードのスタイル一覧（カンマ区切り）")
		contexts = flag.String("contexts", "home,school,community", "storyモードの場面一覧（カンマ区切り）")
		actions  = flag.String("actions", "", "batchモードの行動一覧（カンマ区切り）")
		outDir   = flag.String("out", "output", "画像の出力先ディレクトリ")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	orch, err := setupOrchestrator(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	base := domain.GenerationRequest{
		StylePreset:  *style,
		QualityLevel: *qualityL,
		Size:         cfg.Size,
	}

	switch *mode {
	case "single":
		base.Action = *action
		res := orch.GenerateSingle(ctx, base)
		return saveResults(*outDir, []namedResult{{name: "single", res: res}})

	case "variations":
		set := orch.GenerateVariations(ctx, *action, splitList(*styles), base)
		named := make([]namedResult, len(set.Results))
		for i, r := range set.Results {
			named[i] = namedResult{name: "variation-" + r.Style, res: &r.GenerationResult}
		}
		slog.Info("variations complete", "successful", set.Summary.Successful, "failed", set.Summary.Failed)
		return saveResults(*outDir, named)

	case "sequence":
		seq := orch.GenerateProgressiveSequence(ctx, *action, nil, base)
		named := make([]namedResult, len(seq.Steps))
		for i, s := range seq.Steps {
			named[i] = namedResult{name: fmt.Sprintf("step-%d-%s", i+1, s.Level), res: &s.GenerationResult}
		}
		slog.Info("sequence complete", "successful", seq.Summary.Successful, "failed", seq.Summary.Failed)
		return saveResults(*outDir, named)

	case "story":
		set := orch.GenerateSocialStoryImages(ctx, *action, splitList(*contexts), base)
		named := make([]namedResult, len(set.Images))
		for i, img := range set.Images {
			named[i] = namedResult{name: "story-" + img.Context, res: &img.GenerationResult}
		}
		slog.Info("story complete", "successful", set.Summary.Successful, "failed", set.Summary.Failed)
		return saveResults(*outDir, named)

	case "batch":
		report := orch.BatchGenerateWithQualityControl(ctx, splitList(*actions), base, pipeline.DefaultBatchOptions())
		named := make([]namedResult, len(report.Items))
		for i, item := range report.Items {
			named[i] = namedResult{name: fmt.Sprintf("batch-%02d", i+1), res: &item.GenerationResult}
			slog.Info("batch item", "action", item.Action, "score", item.QualityScore, "attempts", item.AttemptsUsed)
		}
		slog.Info("batch complete", "total", report.Total, "successful", report.Successful, "average_attempts", report.AverageAttempts)
		return saveResults(*outDir, named)

	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}
}

func setupOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, error) {
	if cfg.Provider != "http" {
		// gemini.GenerativeModel の実装はライブラリ利用側で注入する構成のため、
		// このCLIからは http プロバイダのみ利用できる。
		return nil, fmt.Errorf("provider %q is only available via library embedding; use IMAGE_PROVIDER=http", cfg.Provider)
	}

	fetcher := &httpFetcher{client: &http.Client{Timeout: cfg.HTTPTimeout}}
	core, err := generator.NewFetchCore(nil, fetcher, gocache.New(cfg.ImageCacheTTL, 10*time.Minute), cfg.ImageCacheTTL)
	if err != nil {
		return nil, err
	}

	client, err := generator.NewHTTPImageClient(generator.HTTPClientOptions{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Core:        core,
		CallTimeout: cfg.CallTimeout,
	})
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	composer, err := prompts.NewComposer(cat)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	}

	return pipeline.New(composer, client, quality.StructuralAssessor{}, cat, pipeline.Options{
		MaxConcurrent: cfg.MaxConcurrent,
		Limiter:       limiter,
		CallTimeout:   cfg.CallTimeout,
		DefaultSize:   cfg.Size,
	})
}

// httpFetcher は net/http を httpkit.ClientInterface に適合させるアダプタです。
type httpFetcher struct {
	httpkit.ClientInterface
	client *http.Client
}

func (f *httpFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

type namedResult struct {
	name string
	res  *domain.GenerationResult
}

func saveResults(dir string, results []namedResult) error {
	saved := 0
	for _, nr := range results {
		if !nr.res.Success || nr.res.Image == nil {
			slog.Warn("generation failed", "name", nr.name, "error", nr.res.Error)
			continue
		}
		path := filepath.Join(dir, nr.name+extensionFor(nr.res.Image.MimeType))
		if err := os.WriteFile(path, nr.res.Image.Data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		slog.Info("saved", "path", path, "bytes", len(nr.res.Image.Data))
		saved++
	}
	if saved == 0 && len(results) > 0 {
		return fmt.Errorf("no images were generated")
	}
	return nil
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
