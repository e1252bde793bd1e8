package shows

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newDryRunDB opens a gorm session that only generates SQL. Nothing
// connects to a server, so statement shape can be asserted without a
// database.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db
}

func TestLockShowRow_UsesRowLevelLock(t *testing.T) {
	db := newDryRunDB(t)

	var dest struct {
		ID     uuid.UUID `gorm:"column:id"`
		Status string    `gorm:"column:status"`
	}
	stmt := lockShowRow(db, uuid.New()).Find(&dest).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "FOR UPDATE",
		"locked show read must carry a row-level lock, got: %s", sql)
	assert.Contains(t, sql, `"shows"`)
}

func TestIsUniqueViolation(t *testing.T) {
	duplicate := &pgconn.PgError{Code: "23505", ConstraintName: "unique_seat_per_show"}

	assert.True(t, isUniqueViolation(duplicate))
	assert.True(t, isUniqueViolation(fmt.Errorf("create holds: %w", duplicate)),
		"wrapped driver errors must still be recognized")
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}),
		"foreign key violations are not seat conflicts")
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
	assert.False(t, isUniqueViolation(nil))
}

func TestSeatConflictError_ListsSeats(t *testing.T) {
	err := &SeatConflictError{SeatNumbers: []string{"A1", "B2"}}
	assert.True(t, strings.Contains(err.Error(), "A1"))
	assert.True(t, strings.Contains(err.Error(), "B2"))
}
