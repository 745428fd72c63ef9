package migrate

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, dir+"/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		raw, err := fs.ReadFile(migrations, f)
		require.NoError(t, err)
		assert.Contains(t, string(raw), "-- +goose Up", f)
		assert.Contains(t, string(raw), "-- +goose Down", f)
	}

	products, err := fs.ReadFile(migrations, files[0])
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(products), "https://images.unsplash.com/"))
}

func TestRunRequiresDB(t *testing.T) {
	assert.Error(t, Run(context.Background(), nil, "up"))
}
