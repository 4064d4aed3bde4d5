package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping
type JSON struct {
	datatypes.JSON
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	if len(j.JSON) == 0 {
		return nil, nil
	}
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method. The empty string scans to an empty document.
func (j *JSON) Scan(value interface{}) error {
	if s, ok := value.(string); ok && s == "" {
		j.JSON = nil
		return nil
	}
	return j.JSON.Scan(value)
}

// String returns the raw document, or "" when unset.
func (j JSON) String() string {
	return string(j.JSON)
}

// Decode unmarshals the document into v. An unset document leaves v untouched.
func (j JSON) Decode(v interface{}) error {
	if len(j.JSON) == 0 {
		return nil
	}
	return json.Unmarshal(j.JSON, v)
}

// GormDBDataType picks the column type per dialect; MSSQL has no json type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
