package indexer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_NewFileTriggersSync(t *testing.T) {
	db, store, ix := testEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, logger, 50*time.Millisecond, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(store.Root(), "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		docs, _ := db.AllDocuments()
		_, ok := docs["new.md"]
		return ok
	}, "new file not indexed by watcher-driven sync")
}

func TestWatch_NewDirWatched(t *testing.T) {
	db, store, ix := testEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, logger, 50*time.Millisecond, nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(store.Root(), "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(200 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		docs, _ := db.AllDocuments()
		_, ok := docs["subdir/deep.md"]
		return ok
	}, "file in new subdir not indexed")
}

func TestWatch_DeleteRemovesFromStore(t *testing.T) {
	db, store, ix := testEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = store.Write("del.md", []byte("# Delete Me"))
	if _, err := ix.FullSync(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, ix, logger, 50*time.Millisecond, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(store.Root(), "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		docs, _ := db.AllDocuments()
		_, ok := docs["del.md"]
		return !ok
	}, "deleted file still tracked")
}

func TestWatch_CallbackReceivesStats(t *testing.T) {
	_, store, ix := testEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan Stats, 1)
	go Watch(ctx, ix, logger, 50*time.Millisecond, func(st Stats, err error) {
		select {
		case done <- st:
		default:
		}
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(store.Root(), "cb.md"), []byte("x"), 0o644)

	select {
	case st := <-done:
		if st.FilesIndexed == 0 {
			t.Errorf("callback stats = %+v, want at least one indexed", st)
		}
	case <-time.After(5 * time.Second):
		t.Error("callback never invoked")
	}
}

func TestHiddenPath(t *testing.T) {
	root := "/vault"
	cases := []struct {
		path string
		want bool
	}{
		{"/vault/note.md", false},
		{"/vault/sub/note.md", false},
		{"/vault/.trash/note.md", true},
		{"/vault/.git/objects/x", true},
		{"/vault/sub/.gebo-tmp-123", true},
	}
	for _, c := range cases {
		if got := hiddenPath(root, c.path); got != c.want {
			t.Errorf("hiddenPath(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
