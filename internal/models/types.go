package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONBStringArray is a string list stored as a JSON array (jsonb on Postgres,
// text on SQLite).
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// Contains reports whether the list holds s, ignoring case and surrounding space.
func (a JSONBStringArray) Contains(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range a {
		if strings.ToLower(strings.TrimSpace(v)) == s {
			return true
		}
	}
	return false
}
