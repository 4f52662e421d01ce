package database

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMigrationsOrderedAndComplete(t *testing.T) {
	files, err := listMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.True(t, sort.StringsAreSorted(files))
	for _, f := range files {
		assert.True(t, strings.HasSuffix(f, ".sql"), "unexpected file %s", f)
	}

	assert.Contains(t, files, "001_core.sql")
	assert.Contains(t, files, "002_governance.sql")
	assert.Contains(t, files, "003_business.sql")
}
