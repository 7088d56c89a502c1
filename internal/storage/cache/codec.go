package cache

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Encode leaves scalars in their plain text form and stores everything else
// as JSON.
func Encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", errors.New("cache: nil value")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrap(err, "encode cache value")
	}
	return string(raw), nil
}

// DecodeInto unmarshals a structured value written by Encode.
func DecodeInto(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return errors.Wrap(err, "decode cache value")
	}
	return nil
}
