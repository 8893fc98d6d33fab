// Package service is the session layer between the VM core and its
// front-ends. A Runner owns one engine and hands out sessions, each
// wrapping an instance with serialised access and an event history.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lookbusy1344/riscv-vm/loader"
	"github.com/lookbusy1344/riscv-vm/vm"
)

var (
	// ErrSessionNotFound is returned when a session ID is unknown
	ErrSessionNotFound = errors.New("session not found")
)

// eventHistorySize bounds the per-session event ring
const eventHistorySize = 128

// Runner creates and tracks sessions against a single engine
type Runner struct {
	engine     *vm.Engine
	defaultGas uint64

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRunner constructs a runner around one engine configuration. All
// sessions share the engine, so any session's module and memory can be
// recombined after a Decompose.
func NewRunner(cfg vm.Config, defaultGas uint64) *Runner {
	return &Runner{
		engine:     vm.NewEngine(cfg),
		defaultGas: defaultGas,
		sessions:   make(map[string]*Session),
	}
}

// Engine returns the runner's shared engine.
func (r *Runner) Engine() *vm.Engine {
	return r.engine
}

// CreateSession builds a module and memory from the runner's engine,
// combines them into an instance and registers the session.
func (r *Runner) CreateSession() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	module, err := vm.NewModule(r.engine)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	module.SetGas(r.defaultGas)

	instance, err := vm.NewInstance(module, vm.NewMemory(r.engine))
	if err != nil {
		module.Close()
		return nil, fmt.Errorf("creating session: %w", err)
	}

	now := time.Now()
	session := &Session{
		id:        id,
		instance:  instance,
		createdAt: now,
		lastUsed:  now,
	}

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	return session, nil
}

// Session returns the session with the given ID.
func (r *Runner) Session(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions returns a snapshot of all live sessions.
func (r *Runner) ListSessions() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// CloseSession tears down a session, releasing its code arena.
func (r *Runner) CloseSession(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	session.close()
	return nil
}

// ExpireIdle closes sessions unused for longer than maxIdle, returning
// how many were closed.
func (r *Runner) ExpireIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastUsed().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		log.Printf("service: expiring idle session %s", s.id)
		s.close()
	}
	return len(expired)
}

// Close tears down every session.
func (r *Runner) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

func generateSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session ID: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Session wraps one instance. All operations are serialised by the
// session mutex: an instance is exclusive to one call at a time.
type Session struct {
	id string

	mu        sync.Mutex
	instance  *vm.Instance
	closed    bool
	createdAt time.Time
	lastUsed  time.Time
	events    []Event
	dropped   uint64
}

// ID returns the session's identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the session's creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastUsed returns the time of the session's last operation.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Info returns a display snapshot of the session.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := SessionInfo{
		ID:        s.id,
		CreatedAt: s.createdAt,
		LastUsed:  s.lastUsed,
	}
	if !s.closed {
		info.CodeSize = len(s.instance.Module().NativeCode())
		info.Gas = s.instance.Module().Gas()
	}
	return info
}

// InstallNative installs pre-compiled native code into the session's
// module.
func (s *Session) InstallNative(code []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionNotFound
	}
	s.lastUsed = time.Now()

	if err := s.instance.Module().SetNativeCode(code); err != nil {
		s.record(Event{Type: EventError, Detail: err.Error()})
		return err
	}

	s.record(Event{Type: EventInstall, Detail: fmt.Sprintf("%d bytes", len(code))})
	return nil
}

// ValidateImage checks a guest RISC-V image against the supported
// instruction subset. Installation of guest images waits on the native
// lowering; validation is the part of that pipeline that exists today.
func (s *Session) ValidateImage(img *loader.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionNotFound
	}
	s.lastUsed = time.Now()

	if len(img.Bytes) > s.instance.Module().Engine().Config().MaxCodeSize {
		s.record(Event{Type: EventError, Detail: vm.ErrInvalidCodeSize.Error()})
		return vm.ErrInvalidCodeSize
	}
	if err := img.Validate(); err != nil {
		s.record(Event{Type: EventError, Detail: err.Error()})
		return fmt.Errorf("%w: %v", vm.ErrInvalidInstruction, err)
	}
	return nil
}

// Call dispatches into the session's code arena at the given offset. The
// offset must land inside the installed code.
func (s *Session) Call(pc uint32, arg uint32) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrSessionNotFound
	}
	s.lastUsed = time.Now()

	if int(pc) >= len(s.instance.Module().NativeCode()) {
		err := fmt.Errorf("entry offset 0x%x outside installed code", pc)
		s.record(Event{Type: EventError, PC: pc, Detail: err.Error()})
		return 0, err
	}

	result, err := s.instance.Call(pc, arg)
	if err != nil {
		s.record(Event{Type: EventError, PC: pc, Arg: arg, Detail: err.Error()})
		return 0, err
	}

	s.record(Event{Type: EventCall, PC: pc, Arg: arg, Result: result})
	return result, nil
}

// Events returns the session's event history after the given cursor,
// oldest first, plus the new cursor. A cursor of 0 reads from the start
// of the retained window.
func (s *Session) Events(cursor uint64) ([]Event, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.dropped + uint64(len(s.events))
	if cursor >= total {
		return nil, total
	}
	start := uint64(0)
	if cursor > s.dropped {
		start = cursor - s.dropped
	}

	out := make([]Event, len(s.events[start:]))
	copy(out, s.events[start:])
	return out, total
}

func (s *Session) record(ev Event) {
	ev.Time = time.Now()
	s.events = append(s.events, ev)
	if len(s.events) > eventHistorySize {
		overflow := len(s.events) - eventHistorySize
		s.events = s.events[overflow:]
		s.dropped += uint64(overflow)
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	module, _ := s.instance.Decompose()
	module.Close()
}
