// Package search は記事の全文・タグ絞り込みと並び替えを提供する。
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/ranking"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/security"
)

// 並び順
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
)

// Query は検索条件。空のフィールドは絞り込みに使用しない。
type Query struct {
	Text string
	Tag  string
	Sort string // 空の場合はnewest
}

// Search は条件に一致する記事を新しいスライスで返す。入力スライスは変更しない。
// テキストはタイトル・本文・要約・著者名、タグは部分一致で、いずれも大文字小文字を区別しない。
// 同順位の記事は入力順を保つ。
func Search(articles []*model.Article, q Query) ([]*model.Article, error) {
	less, err := comparator(q.Sort)
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	tag := strings.ToLower(strings.TrimSpace(q.Tag))

	matched := make([]*model.Article, 0, len(articles))
	for _, a := range articles {
		if text != "" && !matchesText(a, text) {
			continue
		}
		if tag != "" && !matchesTag(a, tag) {
			continue
		}
		matched = append(matched, a)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j])
	})
	return matched, nil
}

func comparator(sortKey string) (func(a, b *model.Article) bool, error) {
	switch sortKey {
	case "", SortNewest:
		return func(a, b *model.Article) bool { return a.CreatedAt.After(b.CreatedAt) }, nil
	case SortOldest:
		return func(a, b *model.Article) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case SortPopular:
		return func(a, b *model.Article) bool {
			return ranking.TrendingScore(a) > ranking.TrendingScore(b)
		}, nil
	}
	return nil, model.NewInvalidSortError(sortKey)
}

// matchesText は本文をマークアップではなくテキストとして照合する。
func matchesText(a *model.Article, text string) bool {
	for _, field := range []string{a.Title, security.ExtractText(a.Content), a.Summary, a.Author.Name} {
		if strings.Contains(strings.ToLower(field), text) {
			return true
		}
	}
	return false
}

func matchesTag(a *model.Article, tag string) bool {
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), tag) {
			return true
		}
	}
	return false
}

// AllTags は記事に付与された全タグを重複なく昇順で返す。
func AllTags(articles []*model.Article) []string {
	seen := make(map[string]struct{})
	tags := []string{}
	for _, a := range articles {
		for _, t := range a.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

// Service はリポジトリ上の記事に対する検索サービス。
type Service struct {
	articles repository.ArticleRepository
}

// NewService はServiceを生成する。
func NewService(articles repository.ArticleRepository) *Service {
	return &Service{articles: articles}
}

// Discover は公開済み記事を検索する。
func (s *Service) Discover(ctx context.Context, q Query) ([]*model.Article, error) {
	approved, err := s.articles.ListWhere(ctx, model.ArticleFilter{Status: model.ArticleStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list approved articles: %w", err)
	}
	return Search(approved, q)
}

// Tags は公開済み記事のタグ一覧を返す。
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	approved, err := s.articles.ListWhere(ctx, model.ArticleFilter{Status: model.ArticleStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list approved articles: %w", err)
	}
	return AllTags(approved), nil
}

// AuthorArticles は指定著者の記事をステータス別に検索する。
// statusが空の場合は公開済み記事を対象とする。
func (s *Service) AuthorArticles(ctx context.Context, authorID string, status model.ArticleStatus, q Query) ([]*model.Article, error) {
	if status == "" {
		status = model.ArticleStatusApproved
	}
	if !status.Valid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	articles, err := s.articles.ListWhere(ctx, model.ArticleFilter{Status: status, AuthorID: authorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list author articles: %w", err)
	}
	return Search(articles, q)
}
