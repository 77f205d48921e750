package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/masaki/todoline/internal/metrics"
	"github.com/masaki/todoline/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 監視
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
	HTTPMetrics     middleware.HTTPMetricsRecorder
	AuthMetrics     AuthMetricsRecorder
	TodoMetrics     TodoMetricsRecorder

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// Todo
	TodoService TodoServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → (保護ルートのみ) Auth → RateLimit(General)
//
// 認証ルートの入口（/auth/google, /auth/google/callback）と
// /health、/metricsはベアラー認証の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.AuthMetrics)
	todoHandler := NewTodoHandler(deps.TodoService, deps.TodoMetrics)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// OAuthフローの入口とコールバック
	r.Get("/auth/google", authHandler.Login)
	r.Get("/auth/google/callback", authHandler.Callback)

	// ログアウトはトークンなしでも常に成功する（自己完結型トークンのため）
	r.Get("/auth/logout", authHandler.Logout)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 認証済みユーザー情報
		r.Get("/auth/user", authHandler.User)

		// Todo管理
		// POST /todo - Todo作成（作成専用レート制限を追加）
		r.With(deps.RateLimiter.TodoCreateMiddleware()).Post("/todo", todoHandler.Create)

		r.Get("/todos", todoHandler.List)
		r.Patch("/todos/{id}", todoHandler.UpdateCompletion)
		r.Delete("/todos/{id}", todoHandler.Delete)

		r.Put("/completed", todoHandler.MarkCompleted)
	})

	return r
}
