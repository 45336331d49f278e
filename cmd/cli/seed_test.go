package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lasmate/Alisee/internal/money"
	"github.com/lasmate/Alisee/internal/repository"
)

const sampleCatalog = `
images:
  - name: Coeur Girlande
    img_path: Coeur/1.jpg
  - name: Coeur arc-en-ciel
    img_path: Coeur/2.jpg
items:
  - name: Petit Badge
    description: Petit Badge avec une broche.
    image: 1.jpg
    size: 56mm
    price: "1"
    quantity: 100
    category: Badge
    tags: Badge,Petit
  - name: Grand Badge
    description: Grand Badge avec une broche.
    image: 2.jpg
    price: "1.50"
    quantity: 100
    category: Badge
    tags: Badge,Grand
    isCustomisable: false
`

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	cat, err := parseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)

	res, err := seedCatalog(ctx, store, cat)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Items: 2, Images: 2}, res)

	small, err := store.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(100), small.Price)
	require.NotNil(t, small.Size)
	assert.Equal(t, "56mm", *small.Size)
	assert.True(t, small.IsAvailable)
	assert.True(t, small.IsCustomisable)

	large, err := store.GetItem(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(150), large.Price)
	assert.Nil(t, large.Size)
	assert.False(t, large.IsCustomisable)

	res, err = seedCatalog(ctx, store, &catalogFile{Images: cat.Images})
	require.NoError(t, err)
	assert.Equal(t, seedResult{SkippedImages: 2}, res)
}

func TestSeedCatalog_RerunUpdatesItems(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	cat, err := parseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	_, err = seedCatalog(ctx, store, cat)
	require.NoError(t, err)

	cat.Items[1].Price = "2"
	res, err := seedCatalog(ctx, store, cat)
	require.NoError(t, err)
	assert.Equal(t, seedResult{UpdatedItems: 2, SkippedImages: 2}, res)

	n, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	large, err := store.GetItem(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(200), large.Price)
}

func TestSeedCatalog_RejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	_, err := parseCatalog(strings.NewReader("items:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)

	_, err = seedCatalog(ctx, store, &catalogFile{Items: []itemEntry{{Name: "X", Price: "abc"}}})
	assert.Error(t, err)

	_, err = seedCatalog(ctx, store, &catalogFile{Images: []imageEntry{{Name: "no path"}}})
	assert.Error(t, err)

	n, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
