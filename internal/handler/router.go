package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/loglift/internal/metrics"
	"github.com/hitoshi/loglift/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService  AuthServiceInterface
	AuthVerifier SessionVerifier
	AuthConfig   AuthHandlerConfig

	// コード変換
	TransformService  TransformServiceInterface
	TransformMaxInput int

	// GitHub連携
	GitHubServices GitHubServiceFactory
	SuggestService SuggestServiceInterface

	// メトリクス
	Gatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeadersMiddleware → RecoveryMiddleware → LoggingMiddleware
//
// GitHub連携ルート（/api/github/*）はさらに Session → RateLimit(General) を通す。
// /api/transform は未認証でも利用できるため、IPベースのレート制限のみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthVerifier, deps.AuthConfig)
	transformHandler := NewTransformHandler(deps.TransformService, deps.TransformMaxInput)
	githubHandler := NewGitHubHandler(deps.GitHubServices, deps.SuggestService)

	// --- 認証不要のルート ---

	r.Get("/health", HealthCheck)

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// 認証ルート（OAuthフロー）
	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/github", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)
	})

	// 匿名コード変換（IPベースのレート制限）
	r.With(deps.RateLimiter.TransformMiddleware()).Post("/api/transform", transformHandler.Transform)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/github", func(r chi.Router) {
			r.Get("/repos", githubHandler.ListRepos)

			// POST /api/github/scan - スキャン専用レート制限を追加
			r.With(deps.RateLimiter.ScanMiddleware()).Post("/scan", githubHandler.Scan)

			r.Post("/suggest-transforms", githubHandler.SuggestTransforms)
			r.Post("/create-pr", githubHandler.CreatePR)
		})
	})

	return r
}

// HealthCheck はヘルスチェックエンドポイント。
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
