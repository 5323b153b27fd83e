package store

import (
	"testing"

	"jobprompter-desktop/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)

	return map[string]Store{
		"gorm":   NewGormStore(db),
		"memory": NewMemoryStore(),
	}
}

func TestStore(t *testing.T) {
	for name, s := range newStores(t) {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Run("Should report missing keys", func(t *testing.T) {
				val, ok, err := s.Get(KeyImportLogs)
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Empty(t, val)
			})

			t.Run("Should overwrite existing values", func(t *testing.T) {
				require.NoError(t, s.Set(KeyCurrentStats, `{"pendingJobs":1}`))
				require.NoError(t, s.Set(KeyCurrentStats, `{"pendingJobs":2}`))

				val, ok, err := s.Get(KeyCurrentStats)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, `{"pendingJobs":2}`, val)
			})

			t.Run("Should delete several keys at once", func(t *testing.T) {
				require.NoError(t, s.Set(KeyImportLogs, "[]"))
				require.NoError(t, s.Set(KeyCurrentStats, "{}"))
				require.NoError(t, s.Set(KeyCurrentStatsTimestamp, "1700000000000"))

				require.NoError(t, s.Delete(KeyImportLogs, KeyCurrentStats, KeyCurrentStatsTimestamp, "missing"))

				for _, key := range []string{KeyImportLogs, KeyCurrentStats, KeyCurrentStatsTimestamp} {
					_, ok, err := s.Get(key)
					require.NoError(t, err)
					assert.False(t, ok, key)
				}
			})

			t.Run("Should accept an empty delete", func(t *testing.T) {
				assert.NoError(t, s.Delete())
			})
		})
	}
}
