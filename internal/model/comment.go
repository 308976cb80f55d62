// Package model はドメインモデルを定義する。
package model

import "time"

// Comment は記事に付与されるコメントを表す。
// ステータスを持たず、作成された時点で常に表示対象となる。
type Comment struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"articleId"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}
