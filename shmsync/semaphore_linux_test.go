package shmsync

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newSemaphoreFile lays out a sem_t with the given value in a temp file.
func newSemaphoreFile(t *testing.T, value uint32) string {
	t.Helper()
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf, value)
	path := filepath.Join(t.TempDir(), "sem.test")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSemaphoreWaitPost(t *testing.T) {
	sem, err := OpenSemaphoreFile(newSemaphoreFile(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	defer sem.Close()

	if sem.Value() != 1 {
		t.Fatalf("Value() = %d, want 1", sem.Value())
	}
	if !sem.Wait(10 * time.Millisecond) {
		t.Fatal("first Wait failed")
	}
	if sem.Value() != 0 {
		t.Errorf("Value() after Wait = %d, want 0", sem.Value())
	}

	start := time.Now()
	if sem.Wait(20 * time.Millisecond) {
		t.Fatal("Wait on zero semaphore succeeded")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait returned after %v, want at least 20ms", elapsed)
	}

	sem.Post()
	if sem.Value() != 1 {
		t.Errorf("Value() after Post = %d, want 1", sem.Value())
	}
	if !sem.Wait(10 * time.Millisecond) {
		t.Error("Wait after Post failed")
	}
}

func TestSemaphoreWakesWaiter(t *testing.T) {
	path := newSemaphoreFile(t, 0)
	waiter, err := OpenSemaphoreFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer waiter.Close()
	poster, err := OpenSemaphoreFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer poster.Close()

	done := make(chan bool, 1)
	go func() { done <- waiter.Wait(2 * time.Second) }()

	time.Sleep(20 * time.Millisecond)
	poster.Post()

	select {
	case ok := <-done:
		if !ok {
			t.Error("waiter timed out despite Post")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("waiter never returned")
	}
	if waiter.Value() != 0 {
		t.Errorf("Value() = %d, want 0", waiter.Value())
	}
}

func TestSemaphoreHandshake(t *testing.T) {
	sem, err := OpenSemaphoreFile(newSemaphoreFile(t, 1))
	if err != nil {
		t.Fatal(err)
	}
	defer sem.Close()

	var hs Handshake = sem
	if handshakeName(hs) != sem.Name() {
		t.Errorf("handshakeName = %q, want %q", handshakeName(hs), sem.Name())
	}
}

func TestOpenSemaphoreErrors(t *testing.T) {
	small := filepath.Join(t.TempDir(), "sem.small")
	if err := os.WriteFile(small, make([]byte, 4), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{small, filepath.Join(t.TempDir(), "sem.missing")} {
		_, err := OpenSemaphoreFile(path)
		var re *ResourceError
		if !errors.As(err, &re) {
			t.Errorf("OpenSemaphoreFile(%s) = %v, want *ResourceError", path, err)
		}
	}

	_, err := OpenSemaphore("/stdin2shm-test-does-not-exist")
	var re *ResourceError
	if !errors.As(err, &re) || re.Name != "/dev/shm/sem.stdin2shm-test-does-not-exist" {
		t.Errorf("OpenSemaphore() = %v", err)
	}
}
