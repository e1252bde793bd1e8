package theaters

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func TestScreenLockSQL_UsesRowLevelLock(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	// Same shape as the locked read inside ReserveSlot's transaction.
	var screen Screen
	stmt := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", uuid.New()).
		Find(&screen).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "FOR UPDATE",
		"screen reservation must lock the screen row, got: %s", sql)
	assert.Contains(t, sql, `"screens"`)
}
