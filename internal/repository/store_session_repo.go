package repository

import (
	"context"
	"time"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/store"
)

// StoreSessionRepo はレコードストアを使用したセッションリポジトリ。
type StoreSessionRepo struct {
	store store.RecordStore
	now   func() time.Time
}

// NewStoreSessionRepo はStoreSessionRepoを生成する。
func NewStoreSessionRepo(s store.RecordStore) *StoreSessionRepo {
	return &StoreSessionRepo{store: s, now: time.Now}
}

// Create はセッションを作成する。
func (r *StoreSessionRepo) Create(ctx context.Context, session *model.Session) error {
	sessions, err := readCollection[model.Session](ctx, r.store, store.CollectionSessions)
	if err != nil {
		return err
	}
	sessions = append(sessions, session)
	return writeCollection(ctx, r.store, store.CollectionSessions, sessions)
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *StoreSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	sessions, err := readCollection[model.Session](ctx, r.store, store.CollectionSessions)
	if err != nil {
		return nil, err
	}
	now := r.now()
	for _, s := range sessions {
		if s.ID == id && s.ExpiresAt.After(now) {
			return s, nil
		}
	}
	return nil, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *StoreSessionRepo) DeleteByID(ctx context.Context, id string) error {
	return r.deleteWhere(ctx, func(s *model.Session) bool { return s.ID == id })
}

// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
func (r *StoreSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	now := r.now()
	var deleted int64
	err := r.deleteWhere(ctx, func(s *model.Session) bool {
		if !s.ExpiresAt.After(now) {
			deleted++
			return true
		}
		return false
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *StoreSessionRepo) deleteWhere(ctx context.Context, match func(*model.Session) bool) error {
	sessions, err := readCollection[model.Session](ctx, r.store, store.CollectionSessions)
	if err != nil {
		return err
	}

	kept := sessions[:0]
	for _, s := range sessions {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	return writeCollection(ctx, r.store, store.CollectionSessions, kept)
}

// compile-time interface check
var _ SessionRepository = (*StoreSessionRepo)(nil)
