package repository

import (
	"context"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/store"
)

// StoreCommentRepo はレコードストアを使用したコメントリポジトリ。
type StoreCommentRepo struct {
	store store.RecordStore
}

// NewStoreCommentRepo はStoreCommentRepoを生成する。
func NewStoreCommentRepo(s store.RecordStore) *StoreCommentRepo {
	return &StoreCommentRepo{store: s}
}

// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
func (r *StoreCommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	comments, err := readCollection[model.Comment](ctx, r.store, store.CollectionComments)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

// Create はコメントをコレクション末尾に追加する。
func (r *StoreCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	comments, err := readCollection[model.Comment](ctx, r.store, store.CollectionComments)
	if err != nil {
		return err
	}
	comments = append(comments, comment)
	return writeCollection(ctx, r.store, store.CollectionComments, comments)
}

// Upsert はコメントを作成または置き換える。
func (r *StoreCommentRepo) Upsert(ctx context.Context, comment *model.Comment) error {
	comments, err := readCollection[model.Comment](ctx, r.store, store.CollectionComments)
	if err != nil {
		return err
	}
	comments = upsertInto(comments, comment, func(c *model.Comment) string { return c.ID })
	return writeCollection(ctx, r.store, store.CollectionComments, comments)
}

// ListByArticle は指定記事のコメントをコレクション順で返す。
func (r *StoreCommentRepo) ListByArticle(ctx context.Context, articleID string) ([]*model.Comment, error) {
	comments, err := readCollection[model.Comment](ctx, r.store, store.CollectionComments)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Comment, 0)
	for _, c := range comments {
		if c.ArticleID == articleID {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

// compile-time interface check
var _ CommentRepository = (*StoreCommentRepo)(nil)
