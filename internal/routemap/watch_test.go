package routemap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatchReportsWrites(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "route-map.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() { changes <- struct{}{} })
	}()

	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for observed := false; !observed; {
		select {
		case <-changes:
			observed = true
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(`[{"slug":"/"}]`), 0o644))
		case <-deadline:
			t.Fatalf("timed out waiting for change notification")
		}
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}
