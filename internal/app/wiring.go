package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/quillboard/internal/article"
	"github.com/hitoshi/quillboard/internal/auth"
	"github.com/hitoshi/quillboard/internal/comment"
	"github.com/hitoshi/quillboard/internal/config"
	"github.com/hitoshi/quillboard/internal/database"
	"github.com/hitoshi/quillboard/internal/enrichment"
	"github.com/hitoshi/quillboard/internal/handler"
	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/middleware"
	"github.com/hitoshi/quillboard/internal/ranking"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/search"
	"github.com/hitoshi/quillboard/internal/security"
	"github.com/hitoshi/quillboard/internal/store"
)

// Storage はバックエンドごとのリポジトリ一式を保持する。
type Storage struct {
	Users    repository.UserRepository
	Sessions repository.SessionRepository
	Articles repository.ArticleRepository
	Comments repository.CommentRepository

	// Health はストレージの疎通確認。インメモリの場合はnil。
	Health handler.HealthChecker

	db *sql.DB
}

// NewMemoryStorage はインメモリのレコードストア上にリポジトリを構築する。
func NewMemoryStorage() *Storage {
	s := store.NewMemoryStore()
	return &Storage{
		Users:    repository.NewStoreUserRepo(s),
		Sessions: repository.NewStoreSessionRepo(s),
		Articles: repository.NewStoreArticleRepo(s),
		Comments: repository.NewStoreCommentRepo(s),
	}
}

// NewPostgresStorage はPostgres接続上にリポジトリを構築する。
func NewPostgresStorage(db *sql.DB) *Storage {
	return &Storage{
		Users:    repository.NewPostgresUserRepo(db),
		Sessions: repository.NewPostgresSessionRepo(db),
		Articles: repository.NewPostgresArticleRepo(db),
		Comments: repository.NewPostgresCommentRepo(db),
		Health:   db,
		db:       db,
	}
}

// Close はDB接続を閉じる。インメモリの場合は何もしない。
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStorage は設定に応じたストレージを開く。Postgresの場合は接続を確認する。
func openStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if !cfg.UsePostgres() {
		slog.Info("using in-memory storage")
		return NewMemoryStorage(), nil
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")
	return NewPostgresStorage(db), nil
}

// Server はHTTPハンドラーと、停止が必要なバックグラウンド資源を保持する。
type Server struct {
	Handler http.Handler
	limiter *middleware.RateLimiter
}

// Close はレートリミッターのバックグラウンド処理を停止する。
func (s *Server) Close() {
	s.limiter.Stop()
}

// NewServer はドメインサービスとルーターを組み立てる。
// 管理者の初期作成が設定されていれば、ここで作成する。
func NewServer(
	ctx context.Context,
	cfg *config.Config,
	st *Storage,
	collector metrics.MetricsCollector,
	gatherer prometheus.Gatherer,
) (*Server, error) {
	// 1. エンリッチメント
	vocab, err := enrichment.LoadVocabulary(cfg.EnrichmentVocabularyPath)
	if err != nil {
		return nil, err
	}
	pipeline := enrichment.NewPipeline(vocab, enrichment.SimulatedSummarizer{Delay: cfg.EnrichmentLatency})

	// 2. ドメインサービス
	sanitizer := security.NewContentSanitizer()

	articleOpts := []article.Option{article.WithEnrichmentTimeout(cfg.EnrichmentTimeout)}
	if cfg.FeaturedImageProbe {
		articleOpts = append(articleOpts,
			article.WithImageValidator(security.NewImageURLGuard(true, cfg.FeaturedImageProbeTimeout)))
	}
	articleService := article.NewService(st.Articles, pipeline, sanitizer, collector, articleOpts...)
	commentService := comment.NewService(st.Comments, st.Articles, sanitizer, collector)

	authService := auth.NewService(st.Users, st.Sessions, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})
	if cfg.BootstrapAdmin() {
		admin, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
		slog.Info("admin account ready", slog.String("user_id", admin.ID))
	}

	// 3. ルーター
	limiter := middleware.NewRateLimiter(middleware.PerMinuteConfig(cfg.RateLimitGeneral, cfg.RateLimitSubmission))

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		MetricsGatherer:   gatherer,
		HealthChecker:     st.Health,
		Authenticator:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ArticleService: articleService,
		CommentService: commentService,

		SearchService:  search.NewService(st.Articles),
		RankingService: ranking.NewService(st.Users, st.Articles),
	}

	return &Server{Handler: handler.NewRouter(deps), limiter: limiter}, nil
}
