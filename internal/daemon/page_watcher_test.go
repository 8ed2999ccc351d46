package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formtrack/internal/analytics"
	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

type recordingProcessor struct {
	mu    sync.Mutex
	paths []string
}

func (p *recordingProcessor) ProcessFile(_ context.Context, path string) (*pipeline.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, filepath.Base(path))
	return &pipeline.Result{PageView: analytics.NewPageView(path)}, nil
}

func (p *recordingProcessor) seen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func TestPageWatcher_ProcessesHTMLOnce(t *testing.T) {
	dir := t.TempDir()
	proc := &recordingProcessor{}

	w, err := NewPageWatcher(dir, 50*time.Millisecond, proc)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	t.Cleanup(func() { _ = w.Stop() })

	path := filepath.Join(dir, "form.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>one</p>"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("<p>two</p>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return len(proc.seen()) > 0 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"form.html"}, proc.seen())
}

func TestPageWatcher_StopDropsPending(t *testing.T) {
	dir := t.TempDir()
	proc := &recordingProcessor{}

	w, err := NewPageWatcher(dir, time.Hour, proc)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.html"), []byte("<p/>"), 0o600))
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	assert.Empty(t, proc.seen())
}

func TestPageWatcher_MissingDir(t *testing.T) {
	_, err := NewPageWatcher(filepath.Join(t.TempDir(), "absent"), time.Millisecond, &recordingProcessor{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))

	file := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0o600))
	_, err = NewPageWatcher(file, time.Millisecond, &recordingProcessor{})
	require.Error(t, err)
}

func TestIsPage(t *testing.T) {
	assert.True(t, isPage("a/b/form.html"))
	assert.True(t, isPage("FORM.HTM"))
	assert.False(t, isPage("form.html.swp"))
	assert.False(t, isPage("form"))
}
