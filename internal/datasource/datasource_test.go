package datasource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfit-bio/tfit/internal/config"
	"github.com/tfit-bio/tfit/internal/fetch"
)

// fakeSource is ready once downloaded.
type fakeSource struct {
	name      string
	ready     bool
	downloads int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) IsReady(cfg *config.Config) (bool, error) {
	return f.ready, nil
}

func (f *fakeSource) Download(ctx context.Context, cfg *config.Config, _ *fetch.Fetcher) error {
	f.downloads++
	f.ready = true
	return nil
}

func TestEnsureAllDownloadsOnlyMissing(t *testing.T) {
	present := &fakeSource{name: "present", ready: true}
	missing := &fakeSource{name: "missing"}
	r := NewRegistry(present, missing)

	require.NoError(t, r.EnsureAll(context.Background(), nil, nil))

	assert.Equal(t, 0, present.downloads)
	assert.Equal(t, 1, missing.downloads)
	assert.True(t, missing.ready)
}

func TestEnsureAllIdempotent(t *testing.T) {
	src := &fakeSource{name: "src"}
	r := NewRegistry(src)

	require.NoError(t, r.EnsureAll(context.Background(), nil, nil))
	require.NoError(t, r.EnsureAll(context.Background(), nil, nil))

	assert.Equal(t, 1, src.downloads)
}

func TestStatus(t *testing.T) {
	r := NewRegistry(
		&fakeSource{name: "a", ready: true},
		&fakeSource{name: "b"},
	)

	statuses := r.Status(nil)
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].Name)
	assert.True(t, statuses[0].Ready)
	assert.Equal(t, "b", statuses[1].Name)
	assert.False(t, statuses[1].Ready)
}

func TestLookup(t *testing.T) {
	r := NewRegistry(&fakeSource{name: "hippie"})

	src, ok := r.Lookup("hippie")
	require.True(t, ok)
	assert.Equal(t, "hippie", src.Name())

	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}
