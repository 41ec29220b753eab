//go:build !without_sqlite

package memory_test

import (
	"testing"
	"time"

	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSqliteStore(t *testing.T) *memory.SqliteStore {
	t.Helper()
	store, err := memory.NewSqliteStore(":memory:", 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSqliteStore_SaveAndGet(t *testing.T) {
	ctx := t.Context()
	store := newSqliteStore(t)

	mem := &entity.Memory{
		OrganizationID:   "org-a",
		UserID:           "user-1",
		Content:          "prefers dark roast coffee",
		MemoryType:       entity.MemoryTypePreference,
		ImportanceScore:  0.8,
		Metadata:         map[string]any{"source": "chat"},
		ContentEmbedding: []float32{1, 0, 0},
	}
	require.NoError(t, store.Save(ctx, mem))
	assert.NotEmpty(t, mem.ID, "Save assigns an id when absent")
	assert.False(t, mem.CreatedAt.IsZero())

	got, err := store.Get(ctx, memory.Scope{OrganizationID: "org-a"}, mem.ID)
	require.NoError(t, err)
	assert.Equal(t, mem.Content, got.Content)
	assert.Equal(t, "chat", got.Metadata["source"])

	_, err = store.Get(ctx, memory.Scope{OrganizationID: "org-b"}, mem.ID)
	assert.Error(t, err, "Get should not cross the organization boundary")

	// The organization of an existing memory is immutable
	err = store.Save(ctx, &entity.Memory{ID: mem.ID, OrganizationID: "org-b", Content: "hijack"})
	assert.Error(t, err)
}

func TestSqliteStore_Search_TenantIsolation(t *testing.T) {
	ctx := t.Context()
	store := newSqliteStore(t)

	seed := func(org string, embedding []float32, memoryType entity.MemoryType, ageDays int) *entity.Memory {
		mem := &entity.Memory{
			OrganizationID:   org,
			Content:          "note for " + org,
			MemoryType:       memoryType,
			CreatedAt:        time.Now().AddDate(0, 0, -ageDays),
			ContentEmbedding: embedding,
		}
		require.NoError(t, store.Save(ctx, mem))
		return mem
	}

	// Identical embeddings across tenants: only scoping keeps them apart
	a := seed("org-a", []float32{1, 0, 0}, entity.MemoryTypeInteraction, 1)
	seed("org-b", []float32{1, 0, 0}, entity.MemoryTypeInteraction, 1)
	seed("org-b", []float32{1, 0, 0}, entity.MemoryTypeInteraction, 2)

	results, err := store.Search(ctx, memory.Scope{OrganizationID: "org-a"}, []float32{1, 0, 0}, memory.SearchOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].Memory.ID)
	assert.Equal(t, "org-a", results[0].Memory.OrganizationID)

	// An invalid scope is rejected outright
	_, err = store.Search(ctx, memory.Scope{}, []float32{1, 0, 0}, memory.SearchOptions{})
	assert.Error(t, err)
}

func TestSqliteStore_Search_Filters(t *testing.T) {
	ctx := t.Context()
	store := newSqliteStore(t)

	now := time.Now()
	old := &entity.Memory{
		OrganizationID: "org-a", Content: "old interaction",
		MemoryType: entity.MemoryTypeInteraction,
		CreatedAt:  now.AddDate(0, 0, -60), ContentEmbedding: []float32{1, 0, 0},
	}
	recent := &entity.Memory{
		OrganizationID: "org-a", Content: "recent interaction",
		MemoryType: entity.MemoryTypeInteraction,
		CreatedAt:  now.AddDate(0, 0, -2), ContentEmbedding: []float32{1, 0, 0},
	}
	fact := &entity.Memory{
		OrganizationID: "org-a", Content: "recent fact",
		MemoryType: entity.MemoryTypeFact,
		CreatedAt:  now.AddDate(0, 0, -2), ContentEmbedding: []float32{1, 0, 0},
	}
	for _, mem := range []*entity.Memory{old, recent, fact} {
		require.NoError(t, store.Save(ctx, mem))
	}

	results, err := store.Search(ctx, memory.Scope{OrganizationID: "org-a"}, []float32{1, 0, 0}, memory.SearchOptions{
		Limit: 10,
		Types: []entity.MemoryType{entity.MemoryTypeInteraction},
		Since: now.AddDate(0, 0, -30),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, recent.ID, results[0].Memory.ID)
}

func TestSqliteStore_RecordAccess_Scoped(t *testing.T) {
	ctx := t.Context()
	store := newSqliteStore(t)

	mine := &entity.Memory{OrganizationID: "org-a", Content: "mine", ContentEmbedding: []float32{1, 0, 0}}
	theirs := &entity.Memory{OrganizationID: "org-b", Content: "theirs", ContentEmbedding: []float32{1, 0, 0}}
	require.NoError(t, store.Save(ctx, mine))
	require.NoError(t, store.Save(ctx, theirs))

	at := time.Now()
	require.NoError(t, store.RecordAccess(ctx, memory.Scope{OrganizationID: "org-a"}, []string{mine.ID, theirs.ID}, at))

	got, err := store.Get(ctx, memory.Scope{OrganizationID: "org-a"}, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AccessCount)

	other, err := store.Get(ctx, memory.Scope{OrganizationID: "org-b"}, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, other.AccessCount, "a misdirected id must not touch another tenant")
}
