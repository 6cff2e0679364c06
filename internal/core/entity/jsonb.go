package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ScanJSONB decodes a PostgreSQL JSONB column into dest.
// NULL and empty input leave dest untouched.
// Numbers decode through json.Number so decimals keep their precision.
func ScanJSONB(src any, dest any) error {
	var source []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONB: %T", src)
	}

	if len(bytes.TrimSpace(source)) == 0 || bytes.Equal(source, []byte("null")) {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(source))
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode JSONB: %w", err)
	}
	return nil
}

// JSONBValue encodes v for a JSONB column.
func JSONBValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode JSONB: %w", err)
	}
	return b, nil
}
