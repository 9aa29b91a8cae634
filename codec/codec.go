package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	value := new(T)
	err := json.Unmarshal(bz, value)
	if err != nil {
		return *value, eris.Wrap(err, "")
	}
	return *value, nil
}

func Encode(value any) ([]byte, error) {
	bz, err := json.Marshal(value)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// DeepCopy returns a structural copy of a component document via a JSON
// round trip, so callers never alias store-owned state.
func DeepCopy(doc map[string]any) (map[string]any, error) {
	bz, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	return Decode[map[string]any](bz)
}

// Merge recursively merges src into a copy of dst. Maps merge key by key;
// every other value, arrays included, is replaced wholesale. Neither input
// is mutated.
func Merge(dst map[string]any, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			if dstMap, ok := out[k].(map[string]any); ok {
				out[k] = Merge(dstMap, srcMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}
