package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/migrations"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{}) {}

func TestRun_RejectsBadCommands(t *testing.T) {
	err := Run(nopLogger{}, "postgres://localhost/none", migrations.FS, "sideways", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	err = Run(nopLogger{}, "postgres://localhost/none", migrations.FS, "force", nil)
	assert.ErrorIs(t, err, ErrMissingVersion)
}

func TestMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}

	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}
