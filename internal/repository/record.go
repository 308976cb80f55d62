package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/quillboard/internal/store"
)

// readCollection はコレクションの全レコードをデコードして返す。
func readCollection[T any](ctx context.Context, s store.RecordStore, collection string) ([]*T, error) {
	records, err := s.Read(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}

	items := make([]*T, 0, len(records))
	for i, rec := range records {
		item := new(T)
		if err := json.Unmarshal(rec, item); err != nil {
			return nil, fmt.Errorf("failed to decode %s record %d: %w", collection, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// writeCollection は全要素をエンコードしてコレクションを置き換える。
func writeCollection[T any](ctx context.Context, s store.RecordStore, collection string, items []*T) error {
	records := make([][]byte, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %s record: %w", collection, err)
		}
		records = append(records, b)
	}

	if err := s.Write(ctx, collection, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", collection, err)
	}
	return nil
}

// upsertInto はキーが一致する要素を置き換え、無ければ末尾に追加する。
func upsertInto[T any](items []*T, item *T, key func(*T) string) []*T {
	k := key(item)
	for i, existing := range items {
		if key(existing) == k {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
