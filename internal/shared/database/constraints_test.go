package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraintDDL_IsRerunSafe(t *testing.T) {
	assert.NotEmpty(t, constraintDDL)

	for _, ddl := range constraintDDL {
		normalized := strings.Join(strings.Fields(ddl), " ")

		// ADD CONSTRAINT IF NOT EXISTS is not PostgreSQL syntax and
		// would make every startup migration fail.
		assert.NotContains(t, normalized, "ADD CONSTRAINT",
			"constraint DDL must use index forms PostgreSQL can guard: %s", normalized)
		assert.Contains(t, normalized, "IF NOT EXISTS",
			"every statement must tolerate reruns: %s", normalized)
	}
}

func TestConstraintDDL_BacksSeatUniqueness(t *testing.T) {
	joined := strings.Join(constraintDDL, "\n")
	assert.Contains(t, joined, "CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_show")
	assert.Contains(t, joined, "(show_id, seat_number)")
}
