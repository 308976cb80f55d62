package repository

import (
	"context"
	"strings"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/store"
)

// StoreUserRepo はレコードストアを使用したユーザーリポジトリ。
type StoreUserRepo struct {
	store store.RecordStore
}

// NewStoreUserRepo はStoreUserRepoを生成する。
func NewStoreUserRepo(s store.RecordStore) *StoreUserRepo {
	return &StoreUserRepo{store: s}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *StoreUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	users, err := readCollection[model.User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *StoreUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := readCollection[model.User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// Create はユーザーをコレクション末尾に追加する。
func (r *StoreUserRepo) Create(ctx context.Context, user *model.User) error {
	users, err := readCollection[model.User](ctx, r.store, store.CollectionUsers)
	if err != nil {
		return err
	}
	users = append(users, user)
	return writeCollection(ctx, r.store, store.CollectionUsers, users)
}

// List は全ユーザーをコレクション順で返す。
func (r *StoreUserRepo) List(ctx context.Context) ([]*model.User, error) {
	return readCollection[model.User](ctx, r.store, store.CollectionUsers)
}

// compile-time interface check
var _ UserRepository = (*StoreUserRepo)(nil)
