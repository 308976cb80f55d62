package repository

import (
	"context"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/store"
)

// StoreArticleRepo はレコードストアを使用した記事リポジトリ。
// 書き込みはコレクション全体の読み取り→置き換えで行い、並行書き込みは後勝ちとなる。
type StoreArticleRepo struct {
	store store.RecordStore
}

// NewStoreArticleRepo はStoreArticleRepoを生成する。
func NewStoreArticleRepo(s store.RecordStore) *StoreArticleRepo {
	return &StoreArticleRepo{store: s}
}

func articleKey(a *model.Article) string { return a.ID }

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *StoreArticleRepo) FindByID(ctx context.Context, id string) (*model.Article, error) {
	articles, err := readCollection[model.Article](ctx, r.store, store.CollectionArticles)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

// Upsert は記事を作成または置き換える。
func (r *StoreArticleRepo) Upsert(ctx context.Context, article *model.Article) error {
	articles, err := readCollection[model.Article](ctx, r.store, store.CollectionArticles)
	if err != nil {
		return err
	}
	articles = upsertInto(articles, article, articleKey)
	return writeCollection(ctx, r.store, store.CollectionArticles, articles)
}

// ListWhere はフィルタ条件に一致する記事をコレクション順で返す。
func (r *StoreArticleRepo) ListWhere(ctx context.Context, filter model.ArticleFilter) ([]*model.Article, error) {
	articles, err := readCollection[model.Article](ctx, r.store, store.CollectionArticles)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Article, 0, len(articles))
	for _, a := range articles {
		if filter.Matches(a) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// List は全記事をコレクション順で返す。
func (r *StoreArticleRepo) List(ctx context.Context) ([]*model.Article, error) {
	return readCollection[model.Article](ctx, r.store, store.CollectionArticles)
}

// Delete は指定IDの記事を削除する。
func (r *StoreArticleRepo) Delete(ctx context.Context, id string) error {
	articles, err := readCollection[model.Article](ctx, r.store, store.CollectionArticles)
	if err != nil {
		return err
	}

	kept := articles[:0]
	for _, a := range articles {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	return writeCollection(ctx, r.store, store.CollectionArticles, kept)
}

// compile-time interface check
var _ ArticleRepository = (*StoreArticleRepo)(nil)
