package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_MigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(FS, "*.down.sql")
	require.NoError(t, err)

	assert.Len(t, ups, 2)
	assert.Len(t, downs, len(ups))
}

// Удаление двух менеджеров с забронированными слотами на одно время не должно
// упираться в уникальный индекс
func TestFS_SlotUniquenessSkipsDetachedHistory(t *testing.T) {
	up, err := fs.ReadFile(FS, "000002_slots_detached_unique.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(up), "WHERE salesman_id IS NOT NULL OR status = 'available'")
	assert.Contains(t, string(up), "DROP INDEX IF EXISTS ux_slots_salesman_when")
}
