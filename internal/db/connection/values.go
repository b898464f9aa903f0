package connection

import (
	"encoding/json"
	"fmt"
	"time"
)

// NullDisplay is how NULL cells are rendered
const NullDisplay = "NULL"

// TimestampLayout is the canonical string form of timestamp values
const TimestampLayout = "2006-01-02 15:04:05"

// FormatValue converts a scanned database value to its display string.
// Filtering and display both work on this form.
func FormatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return NullDisplay
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(TimestampLayout)
	case map[string]interface{}, []interface{}:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jsonBytes)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ToString converts a catalog value to string, mapping NULL to ""
func ToString(v interface{}) string {
	if v == nil {
		return ""
	}
	return FormatValue(v)
}
