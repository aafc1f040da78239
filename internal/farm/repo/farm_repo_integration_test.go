//go:build integration

package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/butecodosdevs/buteco-core/internal/farm/entity"
	"github.com/butecodosdevs/buteco-core/internal/farm/repo"
	"github.com/butecodosdevs/buteco-core/internal/testutil"
	"github.com/butecodosdevs/buteco-core/pkg/database"
)

func TestFarmRepo(t *testing.T) {
	db := testutil.StartPostgres(t, database.DriverPQ)
	r := repo.NewFarmRepo(db, "fazenda")
	ctx := context.Background()
	require.NoError(t, r.EnsureTable(ctx))
	require.NoError(t, r.EnsureTable(ctx))

	f, err := r.Create(ctx, "Granja")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Granja")
	assert.ErrorIs(t, err, repo.ErrNameTaken)

	it, err := r.AddItem(ctx, f.ID, entity.Item{Type: entity.ItemAnimal, Amount: 4})
	require.NoError(t, err)
	assert.Equal(t, entity.ItemAnimal, it.Type)

	_, err = r.AddItem(ctx, 9999, entity.Item{Type: entity.ItemLand, Amount: 1})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	got, err := r.Get(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 4, got.Items[0].Amount)

	_, err = r.Get(ctx, 9999)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	farms, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, farms, 1)
}
