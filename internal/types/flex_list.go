package types

import (
	"encoding/json"
	"strings"
)

// FlexList accepts either a JSON array or a single value, so a form posting one tag
// and a client posting several decode to the same shape.
type FlexList[T any] []T

func (f *FlexList[T]) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == `""` {
		*f = nil
		return nil
	}

	// If it starts with '[', treat it as a normal array
	if trimmed[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = FlexList[T](slice)
		return nil
	}

	// Otherwise, try to unmarshal as a single item and wrap it in a slice
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = FlexList[T]{item}
	return nil
}

func (f FlexList[T]) Slice() []T {
	return []T(f)
}
