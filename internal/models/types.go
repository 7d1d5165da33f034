package models

import (
	"database/sql/driver"
	"slices"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is stored as text[] on postgres and as the same array literal
// in a text column elsewhere.
type StringList []string

func (StringList) GormDataType() string { return "string_list" }

func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "{}", nil
	}
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src any) error {
	return (*pq.StringArray)(l).Scan(src)
}

func (l StringList) Contains(v string) bool { return slices.Contains(l, v) }

// Add appends v unless present and reports whether l changed.
func (l *StringList) Add(v string) bool {
	if l.Contains(v) {
		return false
	}
	*l = append(*l, v)
	return true
}

// Remove drops every occurrence of v and reports whether l changed.
func (l *StringList) Remove(v string) bool {
	n := len(*l)
	*l = slices.DeleteFunc(*l, func(s string) bool { return s == v })
	return len(*l) != n
}
