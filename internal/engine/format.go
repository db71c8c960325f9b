package engine

import (
	"fmt"
	"strconv"
	"time"
)

// formatScalar renders a column value to a stable string form used inside
// NodeID.Key. Numeric types are rendered in their canonical decimal form, so
// int64(3), float64(3) and a string "3" all produce the same key component.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "\x00nil"
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}
