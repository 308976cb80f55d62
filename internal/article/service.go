// Package article は記事のライフサイクル（投稿・モデレーション・エンゲージメント）を管理する。
package article

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/quillboard/internal/enrichment"
	"github.com/hitoshi/quillboard/internal/metrics"
	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/security"
)

// DefaultEnrichmentTimeout は投稿時メタデータ導出のデフォルトのタイムアウト。
const DefaultEnrichmentTimeout = 5 * time.Second

// ImageValidator はアイキャッチ画像URLを検証する。
type ImageValidator interface {
	Validate(ctx context.Context, rawURL string) error
}

// staticImageCheck はネットワークアクセスを伴わない静的検証のみを行うImageValidator。
type staticImageCheck struct{}

func (staticImageCheck) Validate(_ context.Context, rawURL string) error {
	return security.CheckURL(rawURL)
}

// CreateInput は記事投稿の入力。
type CreateInput struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featuredImage"`
}

// Service は記事のライフサイクル管理サービス。
type Service struct {
	repo          repository.ArticleRepository
	pipeline      *enrichment.Pipeline
	sanitizer     security.ContentSanitizerService
	metrics       metrics.MetricsCollector
	images        ImageValidator
	now           func() time.Time
	enrichTimeout time.Duration
}

// Option はServiceの設定を変更する。
type Option func(*Service)

// WithImageValidator はアイキャッチ画像URLの検証器を差し替える。
func WithImageValidator(v ImageValidator) Option {
	return func(s *Service) { s.images = v }
}

// WithClock は時刻関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEnrichmentTimeout はメタデータ導出のタイムアウトを設定する。0以下の場合はタイムアウトしない。
func WithEnrichmentTimeout(d time.Duration) Option {
	return func(s *Service) { s.enrichTimeout = d }
}

// NewService はServiceを生成する。metricsがnilの場合は記録しない。
func NewService(
	repo repository.ArticleRepository,
	pipeline *enrichment.Pipeline,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
	opts ...Option,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	s := &Service{
		repo:          repo,
		pipeline:      pipeline,
		sanitizer:     sanitizer,
		metrics:       collector,
		images:        staticImageCheck{},
		now:           time.Now,
		enrichTimeout: DefaultEnrichmentTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateArticle は記事を投稿する。
// タイトル・本文が空（空白のみを含む）の場合はバリデーションエラーを返す。
// 要約・読了時間・SEOキーワードを導出し、すべて揃ってから pending 状態で保存する。
// 導出に失敗した場合は何も保存しない。モデレーション判定は記録のみで投稿可否には影響しない。
func (s *Service) CreateArticle(ctx context.Context, input CreateInput, author model.User) (*model.Article, error) {
	title := s.sanitizer.SanitizeText(input.Title)
	if title == "" {
		return nil, model.NewValidationError("title", "タイトルを入力してください")
	}
	content := s.sanitizer.SanitizeContent(input.Content)
	plain := s.sanitizer.PlainText(content)
	if plain == "" {
		// マークアップだけの本文は空として扱う
		return nil, model.NewValidationError("content", "本文を入力してください")
	}

	image := strings.TrimSpace(input.FeaturedImage)
	if image != "" {
		if err := s.images.Validate(ctx, image); err != nil {
			return nil, model.NewInvalidURLError(err.Error())
		}
	}

	derived, err := s.enrich(ctx, plain)
	if err != nil {
		return nil, err
	}

	verdict := s.pipeline.Moderate(title + " " + plain)
	s.metrics.RecordModeration(verdict.Appropriate)
	if !verdict.Appropriate {
		slog.Warn("article flagged by moderation",
			slog.String("author_id", author.ID),
			slog.Any("flags", verdict.Flags),
		)
	}

	now := s.now()
	a := &model.Article{
		ID:            uuid.New().String(),
		Title:         title,
		Content:       content,
		Summary:       derived.Summary,
		Author:        author.Public(),
		Tags:          s.normalizeTags(input.Tags),
		Status:        model.ArticleStatusPending,
		Likes:         []string{},
		Bookmarks:     []string{},
		Views:         0,
		ReadTime:      derived.ReadTime,
		CreatedAt:     now,
		UpdatedAt:     now,
		FeaturedImage: image,
		SEOKeywords:   derived.Keywords,
	}

	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	s.metrics.RecordArticleCreated()
	slog.Info("article created",
		slog.String("article_id", a.ID),
		slog.String("author_id", author.ID),
		slog.Int("read_time", a.ReadTime),
	)
	return a, nil
}

// enrich はタイムアウト付きでメタデータを導出する。
func (s *Service) enrich(ctx context.Context, text string) (enrichment.Enrichment, error) {
	if s.enrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.enrichTimeout)
		defer cancel()
	}

	start := time.Now()
	derived, err := s.pipeline.Enrich(ctx, text)
	s.metrics.RecordEnrichmentLatency(time.Since(start))
	if err != nil {
		return enrichment.Enrichment{}, fmt.Errorf("failed to enrich article: %w", err)
	}
	return derived, nil
}

// normalizeTags はタグの前後空白を除去し、空文字と重複（先勝ち）を取り除く。
func (s *Service) normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = s.sanitizer.SanitizeText(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// SetStatus は記事のステータスを変更する。
// 定義済みの4状態間であれば遷移元を問わず上書きする（モデレーターによる上書きを許容する）。
func (s *Service) SetStatus(ctx context.Context, id string, status model.ArticleStatus) (*model.Article, error) {
	if !status.Valid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := a.Status
	a.Status = status
	a.UpdatedAt = s.touch(a.CreatedAt)

	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update article status: %w", err)
	}

	s.metrics.RecordStatusChange(string(status))
	slog.Info("article status changed",
		slog.String("article_id", id),
		slog.String("from", string(previous)),
		slog.String("to", string(status)),
	)
	return a, nil
}

// touch は更新日時を返す。時刻が作成日時より前に戻っている場合は作成日時を返す。
func (s *Service) touch(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

// ListArticles はフィルタ条件に一致する記事を作成日時の降順で返す。
// 作成日時が同じ記事同士は保存順を保つ。
func (s *Service) ListArticles(ctx context.Context, filter model.ArticleFilter) ([]*model.Article, error) {
	articles, err := s.repo.ListWhere(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].CreatedAt.After(articles[j].CreatedAt)
	})
	return articles, nil
}

// GetArticle は記事を取得する。
func (s *Service) GetArticle(ctx context.Context, id string) (*model.Article, error) {
	return s.find(ctx, id)
}

// ToggleLike はユーザーのいいね状態を切り替える。更新日時は変更しない。
func (s *Service) ToggleLike(ctx context.Context, id, userID string) (*model.Article, error) {
	return s.toggle(ctx, id, userID, metrics.EngagementLike, func(a *model.Article) *[]string { return &a.Likes })
}

// ToggleBookmark はユーザーのブックマーク状態を切り替える。更新日時は変更しない。
func (s *Service) ToggleBookmark(ctx context.Context, id, userID string) (*model.Article, error) {
	return s.toggle(ctx, id, userID, metrics.EngagementBookmark, func(a *model.Article) *[]string { return &a.Bookmarks })
}

func (s *Service) toggle(ctx context.Context, id, userID, kind string, field func(*model.Article) *[]string) (*model.Article, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "ユーザーIDが必要です")
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	list := field(a)
	updated, added := model.ToggleMembership(*list, userID)
	*list = updated

	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", kind, err)
	}

	s.metrics.RecordEngagement(kind, added)
	return a, nil
}

// RecordView は記事の閲覧数を1増やす。
func (s *Service) RecordView(ctx context.Context, id string) (*model.Article, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Views++
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to record view: %w", err)
	}

	s.metrics.RecordView()
	return a, nil
}

// DeleteArticle は記事を削除する。記事に紐づくコメントは削除しない。
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}

	slog.Info("article deleted", slog.String("article_id", id))
	return nil
}

// Assist はエディタ向けにタイトル・タグ・キーワード候補とモデレーション判定を返す。
func (s *Service) Assist(ctx context.Context, content string) (*enrichment.Suggestions, error) {
	plain := s.sanitizer.PlainText(s.sanitizer.SanitizeContent(content))
	if plain == "" {
		return nil, model.NewValidationError("content", "本文を入力してください")
	}

	suggestions := s.pipeline.Suggest(plain)
	return &suggestions, nil
}

// find は記事を取得し、存在しない場合はNotFoundエラーを返す。
func (s *Service) find(ctx context.Context, id string) (*model.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if a == nil {
		return nil, model.NewArticleNotFoundError(id)
	}
	return a, nil
}
