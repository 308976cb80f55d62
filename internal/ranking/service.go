package ranking

import (
	"context"
	"fmt"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
)

// Profile はユーザープロフィールページの表示内容。
type Profile struct {
	User  model.User  `json:"user"`
	Stats AuthorStats `json:"stats"`
}

// Service はリポジトリからコレクションを読み込み、ランキングを計算する。
type Service struct {
	users    repository.UserRepository
	articles repository.ArticleRepository
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, articles repository.ArticleRepository) *Service {
	return &Service{users: users, articles: articles}
}

// Leaderboard は指定軸で並べたリーダーボードを返す。limitが0以下の場合は全件を返す。
func (s *Service) Leaderboard(ctx context.Context, dimension string, limit int) ([]Entry, error) {
	if dimension == "" {
		dimension = DimensionXP
	}
	if !ValidDimension(dimension) {
		return nil, model.NewInvalidDimensionError(dimension)
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	entries, err := SortLeaderboard(ComputeLeaderboard(users, articles), dimension)
	if err != nil {
		return nil, err
	}
	return truncate(entries, limit), nil
}

// Trending は公開済み記事をトレンドスコア順に返す。limitが0以下の場合は全件を返す。
func (s *Service) Trending(ctx context.Context, limit int) ([]TrendingArticle, error) {
	approved, err := s.articles.ListWhere(ctx, model.ArticleFilter{Status: model.ArticleStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list approved articles: %w", err)
	}
	return truncate(ComputeTrending(approved), limit), nil
}

// Profile は指定ユーザーの公開情報と記事集計を返す。
func (s *Service) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		return nil, model.NewUserNotFoundError(userID)
	}

	articles, err := s.articles.ListWhere(ctx, model.ArticleFilter{
		Status:   model.ArticleStatusApproved,
		AuthorID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list author articles: %w", err)
	}

	return &Profile{
		User:  u.Public(),
		Stats: ComputeAuthorStats(userID, articles),
	}, nil
}

// Analytics は管理者ダッシュボードの集計を返す。
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	articles, err := s.articles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	a := ComputeAnalytics(users, articles)
	return &a, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
