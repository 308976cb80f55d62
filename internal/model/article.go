// Package model はドメインモデルを定義する。
package model

import "time"

// ArticleStatus は記事のモデレーション状態を表す。
type ArticleStatus string

const (
	// ArticleStatusDraft は下書き状態。本コアではこの状態への遷移は存在しない（予約値）。
	ArticleStatusDraft ArticleStatus = "draft"
	// ArticleStatusPending はモデレーション待ち状態。投稿直後の初期状態。
	ArticleStatusPending ArticleStatus = "pending"
	// ArticleStatusApproved は承認済み（公開）状態。
	ArticleStatusApproved ArticleStatus = "approved"
	// ArticleStatusRejected は却下状態。
	ArticleStatusRejected ArticleStatus = "rejected"
)

// Valid はステータス値が定義済みの4種類のいずれかであるかを返す。
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPending, ArticleStatusApproved, ArticleStatusRejected:
		return true
	default:
		return false
	}
}

// Article はユーザーが投稿した記事を表す。
// Likes と Bookmarks は同一ユーザーIDを高々1回しか含まない。
type Article struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Summary       string        `json:"summary"`
	Author        User          `json:"author"`
	Tags          []string      `json:"tags"`
	Status        ArticleStatus `json:"status"`
	Likes         []string      `json:"likes"`
	Bookmarks     []string      `json:"bookmarks"`
	Views         int           `json:"views"`
	ReadTime      int           `json:"readTime"` // 分単位。常に1以上
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	FeaturedImage string        `json:"featuredImage,omitempty"`
	SEOKeywords   []string      `json:"seoKeywords"`
}

// AuthorID は記事の著者IDを返す。
func (a *Article) AuthorID() string {
	return a.Author.ID
}

// HasTag は記事が指定タグ（完全一致）を持つかを返す。
func (a *Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone はスライスを含めた記事のディープコピーを返す。
// 呼び出し元が戻り値を変更しても元の記事には影響しない。
func (a Article) Clone() Article {
	a.Tags = cloneStrings(a.Tags)
	a.Likes = cloneStrings(a.Likes)
	a.Bookmarks = cloneStrings(a.Bookmarks)
	a.SEOKeywords = cloneStrings(a.SEOKeywords)
	a.Author = a.Author.Clone()
	return a
}

// ArticleFilter は記事一覧のフィルタ条件を表す。
// 指定されたフィールド同士はAND、Tags内はOR（いずれか1つに一致）で評価される。
// ゼロ値は全件を意味する。
type ArticleFilter struct {
	Status   ArticleStatus
	AuthorID string
	Tags     []string
}

// Matches は記事がフィルタ条件を満たすかを返す。
func (f ArticleFilter) Matches(a *Article) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && a.AuthorID() != f.AuthorID {
		return false
	}
	if len(f.Tags) > 0 {
		for _, tag := range f.Tags {
			if a.HasTag(tag) {
				return true
			}
		}
		return false
	}
	return true
}

// cloneStrings はnilを保ったまま文字列スライスを複製する。
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// ToggleMembership はidがlistに含まれていれば取り除き、含まれていなければ末尾に追加する。
// 戻り値のboolは追加された場合にtrueとなる。listは変更せず新しいスライスを返す。
func ToggleMembership(list []string, id string) ([]string, bool) {
	out := make([]string, 0, len(list)+1)
	removed := false
	for _, v := range list {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	if removed {
		return out, false
	}
	return append(out, id), true
}
