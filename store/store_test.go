package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
)

func testDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(filepath.Join(t.TempDir(), "artifacts"))
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestDirGetMissing(t *testing.T) {
	d := testDir(t)

	data, ok, err := d.Get("q_6162_default.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || data != nil {
		t.Error("expected miss for absent key")
	}
}

func TestDirPutIfAbsent(t *testing.T) {
	d := testDir(t)

	if err := d.PutIfAbsent("key.png", []byte("first")); err != nil {
		t.Fatalf("PutIfAbsent: %v", err)
	}
	// A second put must not replace the committed payload.
	if err := d.PutIfAbsent("key.png", []byte("second")); err != nil {
		t.Fatalf("second PutIfAbsent: %v", err)
	}

	data, ok, err := d.Get("key.png")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(data) != "first" {
		t.Errorf("payload = %q, want %q", data, "first")
	}
}

func TestDirForceSet(t *testing.T) {
	d := testDir(t)

	if err := d.PutIfAbsent("key.png", []byte("old")); err != nil {
		t.Fatalf("PutIfAbsent: %v", err)
	}
	if err := d.ForceSet("key.png", []byte("new")); err != nil {
		t.Fatalf("ForceSet: %v", err)
	}

	data, _, _ := d.Get("key.png")
	if string(data) != "new" {
		t.Errorf("payload = %q, want %q", data, "new")
	}
}

func TestDirLeavesNoTempFiles(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")
	d, err := NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if err := d.ForceSet("a.png", []byte("x")); err != nil {
		t.Fatalf("ForceSet: %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.png" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestDirRejectsPathKeys(t *testing.T) {
	d := testDir(t)
	for _, key := range []string{"", "..", "a/b", `a\b`} {
		if err := d.PutIfAbsent(key, []byte("x")); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestManagerIdempotence(t *testing.T) {
	m := NewManager(testDir(t), nil)
	calls := 0
	gen := func(context.Context) ([]byte, error) {
		calls++
		return []byte("artifact"), nil
	}

	first, hit, err := m.GetOrGenerate(context.Background(), "key.png", false, gen)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if hit {
		t.Error("first call should be a miss")
	}

	second, hit, err := m.GetOrGenerate(context.Background(), "key.png", false, gen)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !hit {
		t.Error("second call should be a hit")
	}
	if string(first) != string(second) {
		t.Error("sequential calls must return byte-identical artifacts")
	}
	if calls != 1 {
		t.Errorf("expected 1 generation, got %d", calls)
	}
}

func TestManagerForceRegenerate(t *testing.T) {
	m := NewManager(testDir(t), nil)
	version := 0
	gen := func(context.Context) ([]byte, error) {
		version++
		return []byte{byte('0' + version)}, nil
	}

	if _, _, err := m.GetOrGenerate(context.Background(), "key.png", false, gen); err != nil {
		t.Fatal(err)
	}

	data, hit, err := m.GetOrGenerate(context.Background(), "key.png", true, gen)
	if err != nil {
		t.Fatalf("forced call: %v", err)
	}
	if hit {
		t.Error("forced regeneration is not a hit")
	}
	if string(data) != "2" {
		t.Errorf("payload = %q, want regenerated %q", data, "2")
	}

	// The replacement is durable.
	data, hit, _ = m.GetOrGenerate(context.Background(), "key.png", false, gen)
	if !hit || string(data) != "2" {
		t.Errorf("after force: hit=%v payload=%q", hit, data)
	}
}

func TestManagerFailureCachesNothing(t *testing.T) {
	m := NewManager(testDir(t), nil)
	boom := errors.New("render failed")

	_, _, err := m.GetOrGenerate(context.Background(), "key.png", false,
		func(context.Context) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected generation error, got %v", err)
	}

	// The key reverts to absent: the next call generates again.
	data, hit, err := m.GetOrGenerate(context.Background(), "key.png", false,
		func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if hit {
		t.Error("retry after failure should not be a hit")
	}
	if string(data) != "ok" {
		t.Errorf("payload = %q", data)
	}
}

func TestManagerSingleFlight(t *testing.T) {
	m := NewManager(testDir(t), nil)

	var generations atomic.Int32
	release := make(chan struct{})
	gen := func(context.Context) ([]byte, error) {
		generations.Add(1)
		<-release
		return []byte("artifact"), nil
	}

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	payloads := make([][]byte, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payloads[i], _, errs[i] = m.GetOrGenerate(context.Background(), "key.png", false, gen)
		}()
	}

	// Callers either join the in-flight generation or, arriving after
	// the commit, hit the store. Either way the generator runs once.
	close(release)
	wg.Wait()

	if got := generations.Load(); got != 1 {
		t.Errorf("expected exactly 1 generation, got %d", got)
	}
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if string(payloads[i]) != "artifact" {
			t.Errorf("caller %d payload = %q", i, payloads[i])
		}
	}
}

func TestManagerIndependentKeysProceed(t *testing.T) {
	m := NewManager(testDir(t), nil)

	// A generation blocked on one key must not serialize another key.
	blocked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		m.GetOrGenerate(context.Background(), "slow.png", false,
			func(context.Context) ([]byte, error) {
				<-blocked
				return []byte("slow"), nil
			})
		close(done)
	}()

	data, _, err := m.GetOrGenerate(context.Background(), "fast.png", false,
		func(context.Context) ([]byte, error) { return []byte("fast"), nil })
	if err != nil {
		t.Fatalf("fast key: %v", err)
	}
	if string(data) != "fast" {
		t.Errorf("payload = %q", data)
	}

	close(blocked)
	<-done
}
