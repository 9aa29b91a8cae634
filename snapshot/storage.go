package snapshot

import (
	"context"

	"github.com/rotisserie/eris"
)

var ErrNoSnapshot = eris.New("no snapshot exists")

// Store is the persistence primitive behind the snapshot manager: one blob
// per key. Implementations must return ErrNoSnapshot from Get when the key
// is absent.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Has(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
