package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt64 accepts a JSON number or a numeric string, as sent by HTML forms.
type FlexInt64 int64

func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	// Try unmarshaling as a number first
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt64(n)
		return nil
	}

	// Try unmarshaling as a string
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		val, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexInt64: invalid integer string %q: %w", s, err)
		}
		*f = FlexInt64(val)
		return nil
	}

	return fmt.Errorf("FlexInt64: unexpected type, expected number or string")
}

func (f FlexInt64) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

func (f FlexInt64) Int64() int64 {
	return int64(f)
}

// Int64s converts a list of flexible integers.
func Int64s(list []FlexInt64) []int64 {
	out := make([]int64, len(list))
	for i, v := range list {
		out[i] = int64(v)
	}
	return out
}
