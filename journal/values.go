package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// lookup returns the member key of obj. Keys are compared literally, so
// localized names never need path escaping. A repeated key resolves to its
// last occurrence.
func lookup(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
		}
		return true
	})
	return out
}

// numberValue accepts a JSON number or a numeric string.
func numberValue(v gjson.Result) (float64, error) {
	switch v.Type {
	case gjson.Number:
		return v.Num, nil
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v.Str)
		}
		return f, nil
	}
	return 0, fmt.Errorf("not a number: %s", v.Raw)
}

// textValue accepts a JSON string, or a number kept in its literal form.
func textValue(v gjson.Result) (string, error) {
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number:
		return v.Raw, nil
	}
	return "", fmt.Errorf("not text: %s", v.Raw)
}

// literal converts v to a Go value without losing numeric precision:
// numbers, including those nested in objects and arrays, become json.Number
// with the journal's own digits.
func literal(v gjson.Result) any {
	switch v.Type {
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.JSON:
		var out any
		if err := decodeNumbers([]byte(v.Raw), &out); err != nil {
			return json.RawMessage(v.Raw)
		}
		return out
	}
	return v.Value()
}

func decodeNumbers(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
