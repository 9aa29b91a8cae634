package snapshot

import "context"

var _ Store = &MapStore{}

// MapStore keeps snapshot blobs in process memory. It is the default store
// for editor sessions that do not configure redis.
type MapStore struct {
	blobs map[string][]byte
}

func NewMapStore() *MapStore {
	return &MapStore{blobs: map[string][]byte{}}
}

func (m *MapStore) Set(_ context.Context, key string, value []byte) error {
	m.blobs[key] = append([]byte(nil), value...)
	return nil
}

func (m *MapStore) Get(_ context.Context, key string) ([]byte, error) {
	bz, ok := m.blobs[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), bz...), nil
}

func (m *MapStore) Has(_ context.Context, key string) (bool, error) {
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *MapStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}
