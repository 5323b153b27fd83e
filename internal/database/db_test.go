package database

import (
	"testing"

	"jobprompter-desktop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	t.Run("Should migrate all tables into an in-memory database", func(t *testing.T) {
		db, err := OpenSQLite(":memory:")
		require.NoError(t, err)

		assert.True(t, db.Migrator().HasTable(&models.KVEntry{}))
		assert.True(t, db.Migrator().HasTable(&models.ScheduledImport{}))
		assert.True(t, db.Migrator().HasTable(&models.TaskProgress{}))
	})

	t.Run("Should generate an ID for new task progress rows", func(t *testing.T) {
		db, err := OpenSQLite(":memory:")
		require.NoError(t, err)

		task := &models.TaskProgress{TaskType: "import", APIName: "Indeed Jobs"}
		require.NoError(t, db.Create(task).Error)

		assert.NotEmpty(t, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	})
}

func TestInitRejectsUnknownURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "mysql://localhost/jobs")

	_, err := Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database URL format")
}
