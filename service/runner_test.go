package service_test

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/lookbusy1344/riscv-vm/loader"
	"github.com/lookbusy1344/riscv-vm/service"
	"github.com/lookbusy1344/riscv-vm/vm"
)

func newTestRunner() *service.Runner {
	return service.NewRunner(vm.Config{
		Syscall:           func(args []uint32, context uint64) uint32 { return 0 },
		MaxInstanceMemory: 64 * 1024,
		MaxCodeSize:       1024,
	}, 1_000_000)
}

func TestRunner_SessionLifecycle(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ID() == "" {
		t.Fatal("Expected non-empty session ID")
	}

	got, err := runner.Session(session.ID())
	if err != nil {
		t.Fatalf("Session lookup failed: %v", err)
	}
	if got != session {
		t.Error("Expected lookup to return the created session")
	}

	if infos := runner.ListSessions(); len(infos) != 1 {
		t.Errorf("Expected 1 session, got %d", len(infos))
	}

	if err := runner.CloseSession(session.ID()); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if _, err := runner.Session(session.ID()); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after close, got %v", err)
	}
}

func TestRunner_CloseUnknownSession(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	if err := runner.CloseSession("no-such-id"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestSession_InstallRecordsEvent(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := session.InstallNative([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("InstallNative failed: %v", err)
	}

	events, cursor := session.Events(0)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Type != service.EventInstall {
		t.Errorf("Expected install event, got %s", events[0].Type)
	}
	if cursor != 1 {
		t.Errorf("Expected cursor=1, got %d", cursor)
	}

	// Reading past the cursor yields nothing new
	if more, _ := session.Events(cursor); len(more) != 0 {
		t.Errorf("Expected no new events, got %d", len(more))
	}
}

func TestSession_InstallOversizeRecordsError(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := session.InstallNative(make([]byte, 4097)); !errors.Is(err, vm.ErrInvalidCodeSize) {
		t.Fatalf("Expected ErrInvalidCodeSize, got %v", err)
	}

	events, _ := session.Events(0)
	if len(events) != 1 || events[0].Type != service.EventError {
		t.Errorf("Expected a single error event, got %+v", events)
	}
}

func TestSession_CallOutsideCode(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := session.Call(0, 42); err == nil {
		t.Error("Expected error calling into an empty arena")
	}
}

func TestSession_ValidateImage(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	var good []byte
	good = binary.LittleEndian.AppendUint32(good, 0x00100093) // addi x1, x0, 1
	if err := session.ValidateImage(&loader.Image{Bytes: good}); err != nil {
		t.Errorf("Expected valid image, got %v", err)
	}

	var bad []byte
	bad = binary.LittleEndian.AppendUint32(bad, 0x000010b7) // lui
	if err := session.ValidateImage(&loader.Image{Bytes: bad}); !errors.Is(err, vm.ErrInvalidInstruction) {
		t.Errorf("Expected ErrInvalidInstruction, got %v", err)
	}

	oversize := &loader.Image{Bytes: make([]byte, 2048)}
	if err := session.ValidateImage(oversize); !errors.Is(err, vm.ErrInvalidCodeSize) {
		t.Errorf("Expected ErrInvalidCodeSize, got %v", err)
	}
}

func TestRunner_ExpireIdle(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	if _, err := runner.CreateSession(); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// Nothing is older than an hour
	if n := runner.ExpireIdle(time.Hour); n != 0 {
		t.Errorf("Expected 0 expired, got %d", n)
	}

	// After a 2 ms sleep the session is older than a 1 ms idle limit
	time.Sleep(2 * time.Millisecond)
	if n := runner.ExpireIdle(time.Millisecond); n != 1 {
		t.Errorf("Expected 1 expired, got %d", n)
	}
	if infos := runner.ListSessions(); len(infos) != 0 {
		t.Errorf("Expected no sessions after expiry, got %d", len(infos))
	}
}

func TestSession_InfoReflectsInstall(t *testing.T) {
	runner := newTestRunner()
	defer runner.Close()

	session, err := runner.CreateSession()
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := session.InstallNative(make([]byte, 16)); err != nil {
		t.Fatalf("InstallNative failed: %v", err)
	}

	info := session.Info()
	if info.CodeSize != 16 {
		t.Errorf("Expected CodeSize=16, got %d", info.CodeSize)
	}
	if info.Gas != 1_000_000 {
		t.Errorf("Expected Gas=1000000, got %d", info.Gas)
	}
}
