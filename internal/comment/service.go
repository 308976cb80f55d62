// Package comment は記事へのコメント投稿といいねを提供する。
// コメントはステータスを持たず、投稿された時点で表示対象となる。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/security"
)

// Service はコメント管理サービス。
type Service struct {
	comments  repository.CommentRepository
	articles  repository.ArticleRepository
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceを生成する。metricsがnilの場合は記録しない。
func NewService(
	comments repository.CommentRepository,
	articles repository.ArticleRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		comments:  comments,
		articles:  articles,
		sanitizer: sanitizer,
		metrics:   collector,
		now:       time.Now,
	}
}

// AddComment は記事にコメントを追加する。
// 本文が空の場合はバリデーションエラー、記事が存在しない場合はNotFoundエラーを返す。
func (s *Service) AddComment(ctx context.Context, articleID, content string, author model.User) (*model.Comment, error) {
	text := s.sanitizer.SanitizeText(content)
	if text == "" {
		return nil, model.NewValidationError("content", "コメントを入力してください")
	}

	a, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if a == nil {
		return nil, model.NewArticleNotFoundError(articleID)
	}

	c := &model.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		Author:    author.Public(),
		Content:   text,
		Likes:     []string{},
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.metrics.RecordCommentCreated()
	slog.Info("comment added",
		slog.String("comment_id", c.ID),
		slog.String("article_id", articleID),
		slog.String("author_id", author.ID),
	)
	return c, nil
}

// ListByArticle は記事のコメントを投稿日時の降順で返す。
func (s *Service) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	comments, err := s.comments.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// ToggleLike はコメントへのいいね状態を切り替える。
func (s *Service) ToggleLike(ctx context.Context, commentID, userID string) (*model.Comment, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "ユーザーIDが必要です")
	}

	c, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if c == nil {
		return nil, model.NewCommentNotFoundError(commentID)
	}

	var added bool
	c.Likes, added = model.ToggleMembership(c.Likes, userID)
	if err := s.comments.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save comment like: %w", err)
	}

	s.metrics.RecordEngagement(metrics.EngagementCommentLike, added)
	return c, nil
}
