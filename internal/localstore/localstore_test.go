package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Put(ctx, "k", []byte(`[1,2,3]`)))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), v)

	// Put replaces the whole value
	require.NoError(t, s.Put(ctx, "k", []byte(`[]`)))
	v, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Close())
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cart.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", []byte("durable")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("durable"), v)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Put(ctx, "k", []byte("v")))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	// the stored value is isolated from later caller mutation
	v[0] = 'x'
	v2, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v2)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNoKey)
}
