package governance

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Global definitions are platform-owned; only tenant-local ones carry the
// creating tenant.
func TestOwnerTenant(t *testing.T) {
	tenantID := uuid.New()

	assert.Nil(t, ownerTenant(tenantID, true))

	owned := ownerTenant(tenantID, false)
	require.NotNil(t, owned)
	assert.Equal(t, tenantID, *owned)
}
