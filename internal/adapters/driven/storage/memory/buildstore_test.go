package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
)

// TestBuildStoreSaveAndGet round-trips a record by source path.
func TestBuildStoreSaveAndGet(t *testing.T) {
	store := NewBuildStore()
	ctx := context.Background()

	rec := &driven.BuildRecord{
		ID:         "b1",
		SourcePath: "/notes/a.remup",
		SourceHash: "abc",
		OutputPath: "/notes/a.html",
		CompiledAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.GetBySource(ctx, "/notes/a.remup")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, "abc", got.SourceHash)
}

// TestBuildStoreGetMissing reports ErrNotFound for unseen sources.
func TestBuildStoreGetMissing(t *testing.T) {
	store := NewBuildStore()

	_, err := store.GetBySource(context.Background(), "/nowhere.remup")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestBuildStoreListOrder returns records most recent first.
func TestBuildStoreListOrder(t *testing.T) {
	store := NewBuildStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Save(ctx, &driven.BuildRecord{SourcePath: "/old.remup", CompiledAt: now.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, &driven.BuildRecord{SourcePath: "/new.remup", CompiledAt: now}))

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/new.remup", records[0].SourcePath)
}

// TestBuildStoreClear removes everything.
func TestBuildStoreClear(t *testing.T) {
	store := NewBuildStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &driven.BuildRecord{SourcePath: "/a.remup"}))
	require.NoError(t, store.Clear(ctx))

	records, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, store.Close())
}
