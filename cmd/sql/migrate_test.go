package sql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNames(t *testing.T) {
	t.Parallel()

	t.Run("bundled migrations", func(t *testing.T) {
		t.Parallel()

		names, err := migrationNames(nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"001_init.sql"}, names)
	})

	t.Run("explicit migrations", func(t *testing.T) {
		t.Parallel()

		names, err := migrationNames([]string{"002_extra.sql"})
		require.NoError(t, err)

		assert.Equal(t, []string{"002_extra.sql"}, names)
	})
}

func TestMigrate_MissingDBURL(t *testing.T) {
	t.Setenv("VCBRATES_DB_URL", "")

	cfg := &migrateCfg{rootCfg: &sqlCfg{}}

	assert.ErrorIs(t, cfg.exec(context.Background(), nil), errMissingDBURL)
}
