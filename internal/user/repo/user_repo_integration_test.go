//go:build integration

package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butecodosdevs/buteco-core/internal/testutil"
	"github.com/butecodosdevs/buteco-core/internal/user/repo"
	"github.com/butecodosdevs/buteco-core/pkg/database"
)

func TestUserRepoGetByDiscordID(t *testing.T) {
	db := testutil.StartPostgres(t, database.DriverPQ)
	r := repo.NewUserRepo(db)
	ctx := context.Background()
	require.NoError(t, r.EnsureTable(ctx))

	id := testutil.InsertUser(t, db, "123", "Alice")

	u, err := r.GetByDiscordID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "Alice", u.Name)

	_, err = r.GetByDiscordID(ctx, "999")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
