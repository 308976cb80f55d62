// Package repository はデータ永続化のインターフェースを定義する。
// 実装はレコードストア上のもの（コレクション全体の読み取り→書き込み）と
// PostgreSQL上のもの（レコード単位の書き込み）の2種類を提供する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/quillboard/internal/model"
)

// ArticleRepository は記事データの永続化インターフェース。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Article, error)

	// Upsert は記事を作成または置き換える。既存記事のコレクション内の位置は保たれる。
	Upsert(ctx context.Context, article *model.Article) error

	// ListWhere はフィルタ条件に一致する記事をコレクション順で返す。
	ListWhere(ctx context.Context, filter model.ArticleFilter) ([]*model.Article, error)

	// List は全記事をコレクション順で返す。
	List(ctx context.Context) ([]*model.Article, error)

	// Delete は指定IDの記事を削除する。存在しない場合は何もしない。
	// 記事に紐づくコメントは削除しない。
	Delete(ctx context.Context, id string) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（大文字小文字を区別しない）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// List は全ユーザーをコレクション順で返す。
	List(ctx context.Context) ([]*model.User, error)
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// Create はコメントを追加する。
	Create(ctx context.Context, comment *model.Comment) error

	// Upsert はコメントを作成または置き換える。
	Upsert(ctx context.Context, comment *model.Comment) error

	// ListByArticle は指定記事のコメントをコレクション順で返す。
	ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// DBTX はPostgreSQLリポジトリが必要とするクエリ実行インターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
