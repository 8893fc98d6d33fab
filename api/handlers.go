package api

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/lookbusy1344/riscv-vm/service"
	"github.com/lookbusy1344/riscv-vm/vm"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Sessions: len(s.runner.ListSessions()),
	})
}

// handleSession handles /api/v1/session (create and list)
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		s.handleListSessions(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSessionRoute dispatches /api/v1/session/{id}[/action]
func (s *Server) handleSessionRoute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/session/")
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "Missing session ID")
		return
	}
	sessionID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSessionStatus(w, r, sessionID)
		case http.MethodDelete:
			s.handleDestroySession(w, r, sessionID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	switch parts[1] {
	case "code":
		s.handleInstallCode(w, r, sessionID)
	case "call":
		s.handleCall(w, r, sessionID)
	case "events":
		s.handleEvents(w, r, sessionID)
	default:
		writeError(w, http.StatusNotFound, "Unknown action")
	}
}

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.runner.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID(),
		CreatedAt: session.CreatedAt(),
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.runner.ListSessions()
	writeJSON(w, http.StatusOK, SessionListResponse{Sessions: infos, Count: len(infos)})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.runner.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	info := session.Info()
	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: info.ID,
		CreatedAt: info.CreatedAt,
		LastUsed:  info.LastUsed,
		CodeSize:  info.CodeSize,
		Gas:       info.Gas,
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.runner.CloseSession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Session destroyed"})
}

// handleInstallCode handles POST /api/v1/session/{id}/code
func (s *Server) handleInstallCode(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, err := s.runner.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req InstallCodeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, err := hex.DecodeString(strings.TrimPrefix(req.Code, "0x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Code must be hex encoded")
		return
	}

	if err := session.InstallNative(code); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, vm.ErrInvalidCodeSize) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, InstallCodeResponse{Success: true, Size: len(code)})
}

// handleCall handles POST /api/v1/session/{id}/call
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, err := s.runner.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req CallRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := session.Call(req.PC, req.Arg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CallResponse{Result: result})
}

// handleEvents handles GET /api/v1/session/{id}/events?cursor=N
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, err := s.runner.Session(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var cursor uint64
	if v := r.URL.Query().Get("cursor"); v != "" {
		cursor, err = strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
	}

	events, next := session.Events(cursor)
	if events == nil {
		events = []service.Event{}
	}
	writeJSON(w, http.StatusOK, EventsResponse{Events: events, Cursor: next})
}
