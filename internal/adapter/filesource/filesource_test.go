package filesource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/couchcryptid/climate-snapshot-service/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "yearly_data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yearly_data", "2022.json"), []byte(`{"statistics":{}}`), 0o600))

	s := New(dir)

	data, err := s.Fetch(context.Background(), source.YearDocument(2022))
	require.NoError(t, err)
	assert.JSONEq(t, `{"statistics":{}}`, string(data))

	_, err = s.Fetch(context.Background(), source.YearDocument(2023))
	require.ErrorIs(t, err, source.ErrNotFound)
}

func TestSource_FetchCancelled(t *testing.T) {
	s := NewFS(fstest.MapFS{source.RegionsDocument: {Data: []byte(`[]`)}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Fetch(ctx, source.RegionsDocument)
	require.ErrorIs(t, err, context.Canceled)

	data, err := s.Fetch(context.Background(), source.RegionsDocument)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
