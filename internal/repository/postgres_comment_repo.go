package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/quillboard/internal/model"
)

// PostgresCommentRepo はPostgreSQLを使用したコメントリポジトリ。
// article_idに外部キー制約は置かない（記事削除時もコメントは残る）。
type PostgresCommentRepo struct {
	db DBTX
}

// NewPostgresCommentRepo はPostgresCommentRepoを生成する。
func NewPostgresCommentRepo(db DBTX) *PostgresCommentRepo {
	return &PostgresCommentRepo{db: db}
}

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *PostgresCommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx,
		`SELECT id, article_id, author, content, likes, created_at FROM comments WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}
	return c, nil
}

// Create はコメントを追加する。
func (r *PostgresCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	author, err := json.Marshal(c.Author.Public())
	if err != nil {
		return fmt.Errorf("failed to encode comment author: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO comments (id, article_id, author, content, likes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ArticleID, author, c.Content, textArray(c.Likes), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Upsert はコメントを作成または置き換える。
func (r *PostgresCommentRepo) Upsert(ctx context.Context, c *model.Comment) error {
	author, err := json.Marshal(c.Author.Public())
	if err != nil {
		return fmt.Errorf("failed to encode comment author: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO comments (id, article_id, author, content, likes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   content = EXCLUDED.content,
		   likes = EXCLUDED.likes`,
		c.ID, c.ArticleID, author, c.Content, textArray(c.Likes), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert comment: %w", err)
	}
	return nil
}

// ListByArticle は指定記事のコメントを作成順で返す。
func (r *PostgresCommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, article_id, author, content, likes, created_at
		 FROM comments WHERE article_id = $1 ORDER BY seq ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var (
		c      model.Comment
		author []byte
		likes  pq.StringArray
	)
	if err := row.Scan(&c.ID, &c.ArticleID, &author, &c.Content, &likes, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(author, &c.Author); err != nil {
		return nil, fmt.Errorf("failed to decode comment author: %w", err)
	}
	c.Likes = []string(likes)
	return &c, nil
}

// compile-time interface check
var _ CommentRepository = (*PostgresCommentRepo)(nil)
