package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// rawDoc is a stored document in insertion order.
type rawDoc struct {
	data []byte
}

// evaluate applies q to docs in memory. Backends without a native query
// language (memory, DynamoDB) share it. When page is false Skip and Limit
// are ignored.
func evaluate(docs []rawDoc, q Query, page bool) ([][]byte, error) {
	type candidate struct {
		data   []byte
		fields map[string]any
	}

	matched := make([]candidate, 0, len(docs))
	for _, d := range docs {
		var fields map[string]any
		if err := json.Unmarshal(d.data, &fields); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if matches(fields, q) {
			matched = append(matched, candidate{data: d.data, fields: fields})
		}
	}

	if q.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].fields[q.SortBy], matched[j].fields[q.SortBy]
			if q.Descending {
				return less(b, a)
			}
			return less(a, b)
		})
	}

	out := make([][]byte, 0, len(matched))
	for _, c := range matched {
		out = append(out, c.data)
	}
	if !page {
		return out, nil
	}

	if q.Skip > 0 {
		if q.Skip >= int64(len(out)) {
			return [][]byte{}, nil
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < int64(len(out)) {
		out = out[:q.Limit]
	}
	return out, nil
}

func matches(fields map[string]any, q Query) bool {
	for field, want := range q.Equals {
		v, ok := fields[field]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	if q.Search.active() {
		v, ok := fields[q.Search.Field].(string)
		if !ok || !strings.Contains(strings.ToLower(v), strings.ToLower(q.Search.Term)) {
			return false
		}
	}
	return true
}

// less orders numbers numerically and everything else by string form.
// Missing values sort first.
func less(a, b any) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// decodeAll unmarshals a list of JSON documents into out (a slice pointer).
func decodeAll(docs [][]byte, out any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(d)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func marshalJSON(doc any) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalJSON(data string, out any) error {
	return json.Unmarshal([]byte(data), out)
}
