package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPIDFileLifecycle(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "test.pid")
	d := New(pidFile)

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error: %v", err)
	}

	pid, err := d.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}

	// This process is trivially alive
	running, pid, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Errorf("IsRunning() = (%v, %d), want (true, %d)", running, pid, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error: %v", err)
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("PID file still present after RemovePID()")
	}
}

func TestMissingPIDFile(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "absent.pid"))

	pid, err := d.ReadPID()
	if err != nil || pid != 0 {
		t.Errorf("ReadPID() = (%d, %v), want (0, nil)", pid, err)
	}

	running, _, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if running {
		t.Error("IsRunning() = true with no PID file")
	}

	// Removing a missing file is not an error
	if err := d.RemovePID(); err != nil {
		t.Errorf("RemovePID() error: %v", err)
	}
}

func TestStalePIDFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "stale.pid")
	// PID 1 rejects signals from unprivileged users; an unlikely huge
	// PID is simply absent
	if err := os.WriteFile(pidFile, []byte("4194304"), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(pidFile)
	running, _, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if running {
		t.Error("IsRunning() = true for a dead PID")
	}
	if _, err := os.Stat(pidFile); !os.IsNotExist(err) {
		t.Error("stale PID file was not cleaned up")
	}
}

func TestInvalidPIDFile(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "garbage.pid")
	if err := os.WriteFile(pidFile, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(pidFile)
	if _, err := d.ReadPID(); err == nil {
		t.Error("ReadPID() should fail on garbage content")
	}
}
