// Package store はコレクション単位で不透明なレコードを読み書きするレコードストアを提供する。
package store

import (
	"context"
	"sync"
)

// コレクション名
const (
	CollectionArticles = "articles"
	CollectionUsers    = "users"
	CollectionComments = "comments"
	CollectionSessions = "sessions"
)

// RecordStore はコレクション全体を単位として読み書きする永続化層のインターフェース。
// レコードはJSONエンコード済みのバイト列として扱い、中身は解釈しない。
// Writeはコレクション全体を置き換える（部分更新は行わない）。
type RecordStore interface {
	// Read はコレクションの全レコードを返す。存在しないコレクションは空スライスを返す。
	Read(ctx context.Context, collection string) ([][]byte, error)
	// Write はコレクションの全レコードを置き換える。
	Write(ctx context.Context, collection string, records [][]byte) error
}

// MemoryStore はプロセス内メモリ上のRecordStore実装。
// ロックはマップ自体の保護のみで、呼び出し側の読み取り→書き込みは直列化しない（後勝ち）。
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][][]byte
}

// NewMemoryStore はMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][][]byte),
	}
}

// Read はコレクションの全レコードのコピーを返す。
func (s *MemoryStore) Read(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRecords(s.collections[collection]), nil
}

// Write はコレクションの全レコードをコピーして置き換える。
func (s *MemoryStore) Write(ctx context.Context, collection string, records [][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collections[collection] = copyRecords(records)
	return nil
}

// copyRecords は呼び出し側とストア内部でバッファを共有しないようにディープコピーする。
func copyRecords(records [][]byte) [][]byte {
	out := make([][]byte, len(records))
	for i, r := range records {
		b := make([]byte, len(r))
		copy(b, r)
		out[i] = b
	}
	return out
}
