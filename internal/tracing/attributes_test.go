package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	// Non-positive max disables truncation.
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
	// Multi-byte runes are not split.
	assert.Equal(t, "héll...", Truncate("héllo wörld", 4))
}

func TestTruncateSQL(t *testing.T) {
	statement := "  SELECT * FROM proctoring_sessions WHERE session_id = $1  "
	assert.Equal(t, strings.TrimSpace(statement), TruncateSQL(statement))

	long := strings.Repeat("x", MaxSQLLength+50)
	truncated := TruncateSQL(long)
	assert.Len(t, truncated, MaxSQLLength+3)
}
