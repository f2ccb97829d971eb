package neo4jstore

import (
	"fmt"
	"time"
)

// timeKeyLayout is the layout of the string part of a slot's uniqueness key.
const timeKeyLayout = time.RFC3339Nano

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toStringPtr(val any) *string {
	s := toString(val)
	if s == "" {
		return nil
	}
	return &s
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toTime(val any) time.Time {
	switch v := val.(type) {
	case time.Time:
		return v.UTC()
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func toBool(val any) bool {
	b, _ := val.(bool)
	return b
}

// optionalString and optionalTime turn nil pointers and zero values into Cypher nulls.
func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func optionalTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

// slotKey is unique per salesman and instant; unassigned slots share the empty salesman.
func slotKey(salesmanID *string, when time.Time) string {
	id := ""
	if salesmanID != nil {
		id = *salesmanID
	}
	return id + "|" + when.UTC().Format(timeKeyLayout)
}
