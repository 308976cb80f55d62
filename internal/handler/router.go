package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/middleware"
)

// healthCheckTimeout はヘルスチェック時のストレージ疎通確認のタイムアウト。
const healthCheckTimeout = 2 * time.Second

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer // nilの場合は/metricsを公開しない
	HealthChecker     HealthChecker       // nilの場合はストレージ確認を省略する
	Authenticator     middleware.Authenticator
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 記事・コメント
	ArticleService ArticleServiceInterface
	CommentService CommentServiceInterface

	// 検索・ランキング
	SearchService  SearchServiceInterface
	RankingService RankingServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → CORS
//	  → (Optional)Session → RateLimit(General) → [RateLimit(Submission)] → [RequireAdmin]
//
// /health と /metrics はセッション・レート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	articleHandler := NewArticleHandler(deps.ArticleService)
	commentHandler := NewCommentHandler(deps.CommentService, deps.ArticleService)
	discoveryHandler := NewDiscoveryHandler(deps.SearchService, deps.RankingService)

	r.Get("/health", healthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	submission := deps.RateLimiter.SubmissionMiddleware()

	// --- 認証不要のルート ---
	// 認証済みであればユーザーを注入する（未公開記事の閲覧判定とレート制限キーに使う）
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSessionMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/api/articles", articleHandler.ListArticles)
		r.Get("/api/articles/{id}", articleHandler.GetArticle)
		r.Get("/api/articles/{id}/comments", commentHandler.ListComments)

		r.Get("/api/search", discoveryHandler.Search)
		r.Get("/api/tags", discoveryHandler.Tags)
		r.Get("/api/leaderboard", discoveryHandler.Leaderboard)
		r.Get("/api/trending", discoveryHandler.Trending)
		r.Get("/api/users/{id}/profile", discoveryHandler.Profile)
		r.Get("/api/users/{id}/articles", discoveryHandler.UserArticles)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		r.With(submission).Post("/api/articles", articleHandler.CreateArticle)
		r.Post("/api/articles/{id}/like", articleHandler.ToggleLike)
		r.Post("/api/articles/{id}/bookmark", articleHandler.ToggleBookmark)
		r.With(submission).Post("/api/articles/{id}/comments", commentHandler.AddComment)
		r.Post("/api/comments/{id}/like", commentHandler.ToggleLike)
		r.Post("/api/assist", articleHandler.Assist)

		// 管理者のみ
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Delete("/api/articles/{id}", articleHandler.DeleteArticle)
			r.Put("/api/articles/{id}/status", articleHandler.SetStatus)
			r.Get("/api/admin/analytics", discoveryHandler.Analytics)
		})
	})

	return r
}

// healthHandler はストレージの疎通を確認し、結果を返すハンドラーを返す。
// GET /health
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
