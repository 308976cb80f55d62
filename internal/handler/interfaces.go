package handler

import (
	"context"

	"github.com/hitoshi/quillboard/internal/article"
	"github.com/hitoshi/quillboard/internal/auth"
	"github.com/hitoshi/quillboard/internal/comment"
	"github.com/hitoshi/quillboard/internal/enrichment"
	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/ranking"
	"github.com/hitoshi/quillboard/internal/search"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, name, email, password string) (*auth.Result, error)
	Login(ctx context.Context, email, password string) (*auth.Result, error)
	Logout(ctx context.Context, sessionID string) error
}

// ArticleReader は記事の公開範囲の判定に使う取得処理。
type ArticleReader interface {
	GetArticle(ctx context.Context, id string) (*model.Article, error)
}

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	CreateArticle(ctx context.Context, input article.CreateInput, author model.User) (*model.Article, error)
	ListArticles(ctx context.Context, filter model.ArticleFilter) ([]*model.Article, error)
	GetArticle(ctx context.Context, id string) (*model.Article, error)
	RecordView(ctx context.Context, id string) (*model.Article, error)
	SetStatus(ctx context.Context, id string, status model.ArticleStatus) (*model.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, id, userID string) (*model.Article, error)
	ToggleBookmark(ctx context.Context, id, userID string) (*model.Article, error)
	Assist(ctx context.Context, content string) (*enrichment.Suggestions, error)
}

// CommentServiceInterface はコメントハンドラーが必要とするサービスインターフェース。
type CommentServiceInterface interface {
	AddComment(ctx context.Context, articleID, content string, author model.User) (*model.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
	ToggleLike(ctx context.Context, commentID, userID string) (*model.Comment, error)
}

// SearchServiceInterface は検索・タグ一覧が必要とするサービスインターフェース。
type SearchServiceInterface interface {
	Discover(ctx context.Context, q search.Query) ([]*model.Article, error)
	Tags(ctx context.Context) ([]string, error)
	AuthorArticles(ctx context.Context, authorID string, status model.ArticleStatus, q search.Query) ([]*model.Article, error)
}

// RankingServiceInterface はランキング・プロフィール・分析が必要とするサービスインターフェース。
type RankingServiceInterface interface {
	Leaderboard(ctx context.Context, dimension string, limit int) ([]ranking.Entry, error)
	Trending(ctx context.Context, limit int) ([]ranking.TrendingArticle, error)
	Profile(ctx context.Context, userID string) (*ranking.Profile, error)
	Analytics(ctx context.Context) (*ranking.Analytics, error)
}

// HealthChecker はストレージの疎通確認を行う。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// compile-time interface checks
var (
	_ AuthServiceInterface    = (*auth.Service)(nil)
	_ ArticleServiceInterface = (*article.Service)(nil)
	_ CommentServiceInterface = (*comment.Service)(nil)
	_ SearchServiceInterface  = (*search.Service)(nil)
	_ RankingServiceInterface = (*ranking.Service)(nil)
)
