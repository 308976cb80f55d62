// Package ranking はリーダーボード、トレンド、著者統計、管理者向け集計を提供する。
// いずれもユーザーと記事のコレクション全体からその都度計算し、結果をキャッシュしない。
package ranking

import (
	"sort"

	"github.com/hitoshi/quillboard/internal/model"
)

// ランキング軸
const (
	DimensionXP    = "xp"
	DimensionBlogs = "blogs"
	DimensionLikes = "likes"
)

// トレンドスコアの重み
const (
	likeWeight = 2.0
	viewWeight = 0.1
)

// topAuthorsLimit は管理者向け集計で返す上位著者数。
const topAuthorsLimit = 5

// Stats はユーザー単位の集計値。記事数・閲覧数・いいね数は公開済み記事のみを対象とする。
type Stats struct {
	XP       int `json:"xp"`
	Articles int `json:"blogs"`
	Views    int `json:"views"`
	Likes    int `json:"likes"`
	Badges   int `json:"badges"`
}

// Entry はリーダーボードの1行。クエリごとに新しく生成される。
type Entry struct {
	User  model.User `json:"user"`
	Stats Stats      `json:"stats"`
}

// AuthorStats はプロフィールページに表示する著者の集計値。
type AuthorStats struct {
	Articles int `json:"blogs"`
	Views    int `json:"views"`
	Likes    int `json:"likes"`
}

// AuthorSummary は管理者向け集計の上位著者1件。
type AuthorSummary struct {
	User     model.User `json:"user"`
	Articles int        `json:"blogCount"`
	Views    int        `json:"totalViews"`
	Likes    int        `json:"totalLikes"`
}

// Analytics は管理者ダッシュボードの集計結果。
type Analytics struct {
	TotalArticles int             `json:"totalBlogs"`
	TotalUsers    int             `json:"totalUsers"`
	TotalViews    int             `json:"totalViews"`
	TotalLikes    int             `json:"totalLikes"`
	TopAuthors    []AuthorSummary `json:"topAuthors"`
}

// TrendingArticle はトレンドスコア付きの記事。
type TrendingArticle struct {
	*model.Article
	Score float64 `json:"trendingScore"`
}

// ValidDimension はdimensionが定義済みのランキング軸かを返す。
func ValidDimension(dimension string) bool {
	switch dimension {
	case DimensionXP, DimensionBlogs, DimensionLikes:
		return true
	}
	return false
}

// ComputeLeaderboard はロールがuserの全ユーザーについて集計行を生成する。
// 出力順はユーザーコレクションの順序と同じ。
func ComputeLeaderboard(users []*model.User, articles []*model.Article) []Entry {
	totals := authorTotals(articles)

	entries := make([]Entry, 0, len(users))
	for _, u := range users {
		if u.Role != model.RoleUser {
			continue
		}
		t := totals[u.ID]
		entries = append(entries, Entry{
			User: u.Public(),
			Stats: Stats{
				XP:       u.XP,
				Articles: t.Articles,
				Views:    t.Views,
				Likes:    t.Likes,
				Badges:   len(u.Badges),
			},
		})
	}
	return entries
}

// SortLeaderboard はentriesを指定軸の降順に並べ替えた新しいスライスを返す。
// 同値の行は入力順を保つ。
func SortLeaderboard(entries []Entry, dimension string) ([]Entry, error) {
	var key func(Entry) int
	switch dimension {
	case DimensionXP:
		key = func(e Entry) int { return e.Stats.XP }
	case DimensionBlogs:
		key = func(e Entry) int { return e.Stats.Articles }
	case DimensionLikes:
		key = func(e Entry) int { return e.Stats.Likes }
	default:
		return nil, model.NewInvalidDimensionError(dimension)
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	return sorted, nil
}

// TrendingScore は記事のトレンドスコアを返す。
func TrendingScore(a *model.Article) float64 {
	return float64(len(a.Likes))*likeWeight + float64(a.Views)*viewWeight
}

// ComputeTrending は記事をトレンドスコアの降順に並べる。
// 同スコアは入力順を保ち、入力スライスは変更しない。
func ComputeTrending(articles []*model.Article) []TrendingArticle {
	ranked := make([]TrendingArticle, len(articles))
	for i, a := range articles {
		ranked[i] = TrendingArticle{Article: a, Score: TrendingScore(a)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// ComputeAuthorStats は指定ユーザーの公開済み記事の集計値を返す。
func ComputeAuthorStats(userID string, articles []*model.Article) AuthorStats {
	return authorTotals(articles)[userID]
}

// ComputeAnalytics は管理者ダッシュボードの集計を行う。
// 合計値は公開済み記事、ユーザー数はロールがuserのユーザーのみを対象とする。
func ComputeAnalytics(users []*model.User, articles []*model.Article) Analytics {
	var out Analytics
	for _, a := range articles {
		if a.Status != model.ArticleStatusApproved {
			continue
		}
		out.TotalArticles++
		out.TotalViews += a.Views
		out.TotalLikes += len(a.Likes)
	}

	totals := authorTotals(articles)
	authors := make([]AuthorSummary, 0, len(users))
	for _, u := range users {
		if u.Role != model.RoleUser {
			continue
		}
		out.TotalUsers++
		t := totals[u.ID]
		authors = append(authors, AuthorSummary{
			User:     u.Public(),
			Articles: t.Articles,
			Views:    t.Views,
			Likes:    t.Likes,
		})
	}
	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].Views > authors[j].Views
	})
	if len(authors) > topAuthorsLimit {
		authors = authors[:topAuthorsLimit]
	}
	out.TopAuthors = authors
	return out
}

// authorTotals は著者IDごとに公開済み記事の件数・閲覧数・いいね数を集計する。
func authorTotals(articles []*model.Article) map[string]AuthorStats {
	totals := make(map[string]AuthorStats)
	for _, a := range articles {
		if a.Status != model.ArticleStatusApproved {
			continue
		}
		t := totals[a.AuthorID()]
		t.Articles++
		t.Views += a.Views
		t.Likes += len(a.Likes)
		totals[a.AuthorID()] = t
	}
	return totals
}
