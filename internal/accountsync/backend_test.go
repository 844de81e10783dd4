package accountsync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/flavr/backend/config"
	"github.com/pageza/flavr/backend/internal/testhelpers"
)

func TestFromConfig(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.SetupTestDatabase(t)

	store, err := FromConfig(ctx, &config.Config{SyncBackend: config.SyncNone}, db)
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = FromConfig(ctx, &config.Config{SyncBackend: config.SyncGorm}, db)
	require.NoError(t, err)
	assert.IsType(t, &GormStore{}, store)

	_, err = FromConfig(ctx, &config.Config{SyncBackend: config.SyncGorm}, nil)
	assert.Error(t, err)

	_, err = FromConfig(ctx, &config.Config{SyncBackend: "ftp"}, db)
	assert.Error(t, err)
}
