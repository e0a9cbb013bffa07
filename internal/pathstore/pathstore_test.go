package pathstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/store"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   int
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = value
	return nil
}

func samplePath(id string, createdAt int64) *paths.LearningPath {
	return &paths.LearningPath{
		ID:        id,
		PathTitle: "Path " + id,
		Phases: []paths.Phase{{
			PhaseTitle: "P1",
			Steps: []paths.Step{
				{ID: id + "-s1", Title: "One", Resources: []string{"doc"}},
				{ID: id + "-s2", Title: "Two", Resources: []string{}},
			},
		}},
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		JournalEntries: []paths.JournalEntry{},
	}
}

func TestList_EmptyStorage(t *testing.T) {
	s := New(newMemKV(), nil)
	got := s.List(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_CorruptOrUnreadable(t *testing.T) {
	kv := newMemKV()
	kv.data[paths.StorageKey] = "{not json"
	assert.Empty(t, New(kv, nil).List(context.Background()))

	kv = newMemKV()
	kv.data[paths.StorageKey] = `{"id":"object-not-array"}`
	assert.Empty(t, New(kv, nil).List(context.Background()))

	kv = newMemKV()
	kv.getErr = errors.New("quota")
	assert.Empty(t, New(kv, nil).List(context.Background()))

	kv = newMemKV()
	kv.data[paths.StorageKey] = "null"
	assert.NotNil(t, New(kv, nil).List(context.Background()))
}

func TestInsertGetByID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	p := samplePath("path-1", 100)

	require.NoError(t, s.Insert(ctx, p))

	got, ok := s.GetByID(ctx, "path-1")
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok = s.GetByID(ctx, "nope")
	assert.False(t, ok)
}

func TestUpdate_ReflectsModification(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	p := samplePath("path-1", 100)
	require.NoError(t, s.Insert(ctx, p))

	mod := p.Clone()
	mod.Phases[0].Steps[0].Completed = true
	mod.UpdatedAt = p.UpdatedAt + 5
	require.NoError(t, s.Update(ctx, mod))

	got, ok := s.GetByID(ctx, "path-1")
	require.True(t, ok)
	assert.True(t, got.Phases[0].Steps[0].Completed)
	assert.Greater(t, got.UpdatedAt, p.UpdatedAt)
}

func TestUpdate_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, nil)
	require.NoError(t, s.Insert(ctx, samplePath("path-1", 100)))
	before := kv.data[paths.StorageKey]

	require.NoError(t, s.Update(ctx, samplePath("ghost", 1)))
	assert.Equal(t, before, kv.data[paths.StorageKey])
	assert.Equal(t, 1, kv.sets)
}

func TestMutate_AppliesAndReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	require.NoError(t, s.Insert(ctx, samplePath("path-1", 100)))

	got, err := s.Mutate(ctx, "path-1", func(p *paths.LearningPath) error {
		p.Phases[0].Steps[1].Completed = true
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Phases[0].Steps[1].Completed)

	got.PathTitle = "changed by caller"
	stored, _ := s.GetByID(ctx, "path-1")
	assert.True(t, stored.Phases[0].Steps[1].Completed)
	assert.Equal(t, "Path path-1", stored.PathTitle)
}

func TestMutate_UnknownIDSkipsFn(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, nil)
	require.NoError(t, s.Insert(ctx, samplePath("path-1", 100)))

	called := false
	got, err := s.Mutate(ctx, "ghost", func(*paths.LearningPath) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, called)
	assert.Equal(t, 1, kv.sets)
}

func TestMutate_FnErrorLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, nil)
	require.NoError(t, s.Insert(ctx, samplePath("path-1", 100)))
	before := kv.data[paths.StorageKey]

	boom := errors.New("index out of range")
	_, err := s.Mutate(ctx, "path-1", func(p *paths.LearningPath) error {
		p.PathTitle = "half applied"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, kv.data[paths.StorageKey])
}

func TestMutate_ConcurrentChangesAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	p := samplePath("path-1", 100)
	for i := 2; i < 20; i++ {
		p.Phases[0].Steps = append(p.Phases[0].Steps, paths.Step{ID: string(rune('a' + i)), Title: "More"})
	}
	require.NoError(t, s.Insert(ctx, p))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Mutate(ctx, "path-1", func(lp *paths.LearningPath) error {
				lp.Phases[0].Steps[i].Completed = true
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := s.GetByID(ctx, "path-1")
	assert.Equal(t, 100, got.Progress())
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := New(kv, nil)
	require.NoError(t, s.Insert(ctx, samplePath("a", 1)))
	require.NoError(t, s.Insert(ctx, samplePath("b", 2)))

	require.NoError(t, s.Delete(ctx, "a"))
	_, ok := s.GetByID(ctx, "a")
	assert.False(t, ok)
	assert.Len(t, s.List(ctx), 1)

	before := kv.data[paths.StorageKey]
	require.NoError(t, s.Delete(ctx, "unknown"))
	assert.Equal(t, before, kv.data[paths.StorageKey])
	assert.Len(t, s.List(ctx), 1)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	require.NoError(t, s.Insert(ctx, samplePath("old", 1)))
	require.NoError(t, s.Insert(ctx, samplePath("new", 3)))
	require.NoError(t, s.Insert(ctx, samplePath("mid", 2)))

	got := s.ListNewestFirst(ctx)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{got[0].ID, got[1].ID, got[2].ID})

	insertion := s.List(ctx)
	assert.Equal(t, "old", insertion[0].ID)
}

func TestWriteFailureIsReturned(t *testing.T) {
	kv := newMemKV()
	kv.setErr = errors.New("disk full")
	s := New(kv, nil)

	err := s.Insert(context.Background(), samplePath("a", 1))
	assert.ErrorIs(t, err, kv.setErr)
}

func TestInsert_DoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)
	p := samplePath("a", 1)
	require.NoError(t, s.Insert(ctx, p))

	p.Phases[0].Steps[0].Completed = true
	got, _ := s.GetByID(ctx, "a")
	assert.False(t, got.Phases[0].Steps[0].Completed)
}

func TestConcurrentInsertsAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := New(newMemKV(), nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Insert(ctx, samplePath(string(rune('a'+i)), int64(i)))
		}()
	}
	wg.Wait()

	assert.Len(t, s.List(ctx), 20)
}

func TestBackends(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "paths.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fileKV, err := store.NewFileKV(t.TempDir())
	require.NoError(t, err)

	for name, kv := range map[string]store.KV{"sqlite": db.KV(), "file": fileKV} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(kv, nil)
			p := samplePath("path-1", 10)

			require.NoError(t, s.Insert(ctx, p))
			got, ok := s.GetByID(ctx, p.ID)
			require.True(t, ok)
			assert.Equal(t, p, got)

			require.NoError(t, s.Delete(ctx, p.ID))
			assert.Empty(t, s.List(ctx))
		})
	}
}
