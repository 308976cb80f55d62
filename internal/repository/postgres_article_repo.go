package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/hitoshi/quillboard/internal/model"
)

// articleColumns はarticlesテーブルのSELECT対象カラム。scanArticleの順序と一致させる。
var articleColumns = []string{
	"id", "title", "content", "summary", "author", "tags", "status",
	"likes", "bookmarks", "views", "read_time", "created_at", "updated_at",
	"featured_image", "seo_keywords",
}

// psql はプレースホルダを$N形式にしたクエリビルダー。
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresArticleRepo はPostgreSQLを使用した記事リポジトリ。
// コレクション順はseq列（挿入順）で表現する。
type PostgresArticleRepo struct {
	db DBTX
}

// NewPostgresArticleRepo はPostgresArticleRepoを生成する。
func NewPostgresArticleRepo(db DBTX) *PostgresArticleRepo {
	return &PostgresArticleRepo{db: db}
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	query, args, err := psql.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find article by ID: %w", err)
	}
	return article, nil
}

// Upsert は記事を作成または置き換える。既存行のseqは変更しない。
func (r *PostgresArticleRepo) Upsert(ctx context.Context, a *model.Article) error {
	author, err := json.Marshal(a.Author.Public())
	if err != nil {
		return fmt.Errorf("failed to encode article author: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO articles (id, title, content, summary, author_id, author, tags, status,
		                       likes, bookmarks, views, read_time, created_at, updated_at,
		                       featured_image, seo_keywords)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO UPDATE SET
		   title = EXCLUDED.title,
		   content = EXCLUDED.content,
		   summary = EXCLUDED.summary,
		   author_id = EXCLUDED.author_id,
		   author = EXCLUDED.author,
		   tags = EXCLUDED.tags,
		   status = EXCLUDED.status,
		   likes = EXCLUDED.likes,
		   bookmarks = EXCLUDED.bookmarks,
		   views = EXCLUDED.views,
		   read_time = EXCLUDED.read_time,
		   updated_at = EXCLUDED.updated_at,
		   featured_image = EXCLUDED.featured_image,
		   seo_keywords = EXCLUDED.seo_keywords`,
		a.ID, a.Title, a.Content, a.Summary, a.Author.ID, author,
		textArray(a.Tags), string(a.Status),
		textArray(a.Likes), textArray(a.Bookmarks),
		a.Views, a.ReadTime, a.CreatedAt, a.UpdatedAt,
		a.FeaturedImage, textArray(a.SEOKeywords),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert article: %w", err)
	}
	return nil
}

// ListWhere はフィルタ条件に一致する記事をseq順で返す。
func (r *PostgresArticleRepo) ListWhere(ctx context.Context, filter model.ArticleFilter) ([]*model.Article, error) {
	query, args, err := buildListWhere(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build article list query: %w", err)
	}
	return r.query(ctx, query, args...)
}

// List は全記事をseq順で返す。
func (r *PostgresArticleRepo) List(ctx context.Context) ([]*model.Article, error) {
	return r.ListWhere(ctx, model.ArticleFilter{})
}

// Delete は指定IDの記事を削除する。commentsは削除しない。
func (r *PostgresArticleRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// buildListWhere はフィルタからSELECT文を組み立てる。
// タグはいずれか1つに一致すればよいため配列の重なり演算子（&&）を使う。
func buildListWhere(filter model.ArticleFilter) sq.SelectBuilder {
	b := psql.Select(articleColumns...).From("articles")
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.AuthorID != "" {
		b = b.Where(sq.Eq{"author_id": filter.AuthorID})
	}
	if len(filter.Tags) > 0 {
		b = b.Where("tags && ?", pq.StringArray(filter.Tags))
	}
	return b.OrderBy("seq ASC")
}

func (r *PostgresArticleRepo) query(ctx context.Context, query string, args ...any) ([]*model.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

// textArray はnilを空配列として送る。TEXT[]列はすべてNOT NULL。
func textArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		a                                model.Article
		author                           []byte
		status                           string
		tags, likes, bookmarks, keywords pq.StringArray
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Summary, &author, &tags, &status,
		&likes, &bookmarks, &a.Views, &a.ReadTime, &a.CreatedAt, &a.UpdatedAt,
		&a.FeaturedImage, &keywords,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(author, &a.Author); err != nil {
		return nil, fmt.Errorf("failed to decode article author: %w", err)
	}
	a.Status = model.ArticleStatus(status)
	a.Tags = []string(tags)
	a.Likes = []string(likes)
	a.Bookmarks = []string(bookmarks)
	a.SEOKeywords = []string(keywords)
	return &a, nil
}

// compile-time interface check
var _ ArticleRepository = (*PostgresArticleRepo)(nil)
