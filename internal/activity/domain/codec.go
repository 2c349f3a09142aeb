package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeList decodes a JSON array element by element. Elements that fail to
// decode are skipped and counted. A document that is not an array fails with
// ErrMalformedData.
func DecodeList[T any](raw []byte) ([]T, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, 0, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, 0, fmt.Errorf("%w: expected array: %v", ErrMalformedData, err)
	}

	items := make([]T, 0, len(elements))
	skipped := 0
	for _, el := range elements {
		var item T
		if err := json.Unmarshal(el, &item); err != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// DecodeCheckIns decodes coaching data. The canonical shape is an array with
// the most recent check-in last; a lone object is read as a one-element array.
func DecodeCheckIns(raw []byte) ([]CheckIn, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var c CheckIn
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, 1, fmt.Errorf("%w: check-in object: %v", ErrMalformedData, err)
		}
		return []CheckIn{c}, 0, nil
	}
	return DecodeList[CheckIn](raw)
}

// EncodeList encodes items as a JSON array, never null.
func EncodeList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
