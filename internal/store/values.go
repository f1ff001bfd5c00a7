package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// normalize converts arbitrary caller data to plain JSON values (maps, slices,
// float64, string, bool, nil) so both implementations hand back the same shapes.
func normalize(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	m, err := normalize(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneDocument(d Document) Document {
	data, _ := cloneValue(d.Data).(map[string]any)
	return Document{ID: d.ID, Data: data, CreatedAt: d.CreatedAt}
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// SortDocuments orders docs in place. Documents that compare equal on the field are
// ordered by id ascending. A nil order sorts by id only.
func SortDocuments(docs []Document, order *OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		if order != nil {
			c := compareField(docs[i], docs[j], order.Field)
			if order.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})
}

func compareField(a, b Document, field string) int {
	if field == FieldCreatedAt {
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return compareValues(a.Data[field], b.Data[field])
}

// compareValues orders nil < bool < number < string. Other kinds compare equal.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
