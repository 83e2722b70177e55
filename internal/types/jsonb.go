package types

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Compile-time interface assertions. Scan is on pointer receivers; Value is
// on value receivers.
var (
	_ sql.Scanner   = (*StringList)(nil)
	_ driver.Valuer = StringList(nil)
	_ sql.Scanner   = (*GeoPoint)(nil)
	_ driver.Valuer = GeoPoint{}
)

// scanJSONB scans a JSONB database value into a Go pointer. It handles nil
// values, []byte, and string representations from different drivers.
func scanJSONB(dest any, value any) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb: unsupported scan type %T", value)
	}
	return json.Unmarshal(data, dest)
}

// StringList is an ordered list of strings stored as a JSONB column
// (equipment, materials, risk factors). A nil list round-trips as SQL NULL
// and scans back to nil.
type StringList []string

// Scan implements sql.Scanner for reading JSONB from the database.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSONB(l, value)
}

// Value implements driver.Valuer for writing JSONB to the database.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for GeoPoint JSONB columns.
func (p *GeoPoint) Scan(value any) error {
	return scanJSONB(p, value)
}

// Value implements driver.Valuer for GeoPoint JSONB columns.
func (p GeoPoint) Value() (driver.Value, error) {
	return json.Marshal(p)
}
