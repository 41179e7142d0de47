package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a jsonb column holding an arbitrary document. It keeps the
// raw bytes so payloads round-trip without re-marshalling.
type JSON json.RawMessage

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// MustJSON serialises v, swallowing the error. For audit value
// snapshots built from plain maps where marshalling cannot fail.
func MustJSON(v interface{}) JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return JSON(b)
}

// MarshalDocument serialises v into a JSON column value.
func MarshalDocument(v interface{}) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSON(b), nil
}

// UnmarshalDocument deserialises the column into v.
func (j JSON) UnmarshalDocument(v interface{}) error {
	if len(j) == 0 {
		return fmt.Errorf("empty document")
	}
	return json.Unmarshal(j, v)
}
