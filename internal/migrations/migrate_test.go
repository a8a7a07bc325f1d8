package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Simplici0/landedcost/internal/db"
)

func TestUpIsRepeatable(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, Up(database))
	require.NoError(t, Up(database))

	version, err := Version(database)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	for _, table := range []string{"cost_settings", "container_types", "shipping_rates", "exchange_rates"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}
