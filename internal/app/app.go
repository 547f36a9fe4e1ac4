// Package app はアプリケーションの初期化、依存関係のワイヤリング、起動を担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/loglift/internal/auth"
	"github.com/hitoshi/loglift/internal/config"
	"github.com/hitoshi/loglift/internal/github"
	"github.com/hitoshi/loglift/internal/handler"
	"github.com/hitoshi/loglift/internal/logger"
	"github.com/hitoshi/loglift/internal/metrics"
	"github.com/hitoshi/loglift/internal/middleware"
	"github.com/hitoshi/loglift/internal/scan"
	"github.com/hitoshi/loglift/internal/session"
	"github.com/hitoshi/loglift/internal/transform"
)

// Init はアプリケーションの初期化を行う。
// .envファイル（存在する場合）と環境変数からConfigを読み込み、
// JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. .envファイルの読み込み（存在しない場合は環境変数のみ使用）
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env file")
	}

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	return runServe(cfg)
}

// runServe はAPIサーバーモードで起動する。
// 全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. セッションマネージャーの初期化
	sessionManager, err := session.NewManager(cfg.SessionSecret, cfg.SessionMaxAge)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	// 2. メトリクスコレクターの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. 認証サービスの初期化
	oauthProvider := auth.NewGitHubOAuthProvider(auth.GitHubOAuthConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		CallbackURL:  cfg.GitHubCallbackURL,
	})
	authService := auth.NewService(oauthProvider, sessionManager)

	if !cfg.OAuthConfigured() {
		slog.Warn("GitHub OAuth is not configured; authenticated endpoints will be unavailable")
	}

	// 4. コード変換サービスの初期化
	anthropicClient := transform.NewAnthropicClient(
		cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.APITimeout, slog.Default(),
	)
	requester := transform.NewRequester(anthropicClient, collector)
	suggestService := transform.NewService(requester, slog.Default(), cfg.TransformMaxConcurrent)

	// 5. GitHub連携サービスの初期化
	clientFactory := github.NewClientFactory(slog.Default(), collector)
	matcher := scan.NewMatcher(scan.DefaultPatterns())

	githubServices := handler.NewGitHubServiceFactory(handler.GitHubServiceDeps{
		Clients:       clientFactory,
		Matcher:       matcher,
		Transformer:   requester,
		Logger:        slog.Default(),
		ScanMetrics:   collector,
		PRMetrics:     collector,
		MaxFiles:      cfg.ScanMaxFiles,
		MaxConcurrent: cfg.ScanMaxConcurrent,
	})

	// 6. レート制限の初期化（configはreq/min単位なのでreq/secに変換する）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ScanRate = rate.Limit(float64(cfg.RateLimitScan) / 60.0)
	rateLimiterCfg.ScanBurst = cfg.RateLimitScan
	rateLimiterCfg.TransformRate = rate.Limit(float64(cfg.RateLimitTransform) / 60.0)
	rateLimiterCfg.TransformBurst = cfg.RateLimitTransform

	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 7. ルーターの構築
	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		TokenVerifier:     sessionManager,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,

		AuthService:  authService,
		AuthVerifier: sessionManager,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:         cfg.BaseURL,
			CookieDomain:    cfg.CookieDomain,
			CookieSecure:    cfg.CookieSecure,
			SessionMaxAge:   int(cfg.SessionMaxAge.Seconds()),
			OAuthConfigured: cfg.OAuthConfigured(),
		},

		TransformService:  requester,
		TransformMaxInput: cfg.TransformMaxInput,

		GitHubServices: githubServices,
		SuggestService: suggestService,

		Gatherer: registry,
	}

	router := handler.NewRouter(deps)

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
