// Package server hosts the streamable HTTP transport of the MCP server,
// plus a couple of plain JSON endpoints for operators: a health probe and
// a read-only view of the send-attempt audit log.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/RealHotChiliPepe/tgbot/internal/audit"
)

type Server struct {
	mux    *http.ServeMux
	addr   string
	listen func(network, address string) (net.Listener, error)
	serve  func(net.Listener, http.Handler) error
}

// New builds the HTTP host. auditLog may be nil; the audit endpoint then
// reports that auditing is disabled.
func New(m *mcpserver.MCPServer, auditLog *audit.Log, addr, version string) *Server {
	srv := &Server{addr: addr, listen: net.Listen, serve: http.Serve}
	srv.mux = http.NewServeMux()
	srv.routes(m, auditLog, version)
	return srv
}

func (s *Server) Start() error {
	listenFn := s.listen
	if listenFn == nil {
		listenFn = net.Listen
	}
	serveFn := s.serve
	if serveFn == nil {
		serveFn = http.Serve
	}

	ln, err := listenFn("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("tgbot server: listen %s: %w", s.addr, err)
	}
	log.Printf("[tgbot] HTTP server listening on %s (MCP at /mcp)", s.addr)
	return serveFn(ln, s.mux)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes(m *mcpserver.MCPServer, auditLog *audit.Log, version string) {
	streamable := mcpserver.NewStreamableHTTPServer(m)
	s.mux.Handle("/mcp", streamable)
	s.mux.Handle("/mcp/", streamable)

	s.mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"service": "tgbot",
			"version": version,
		})
	})

	s.mux.HandleFunc("GET /audit/sends", func(w http.ResponseWriter, r *http.Request) {
		if auditLog == nil {
			jsonError(w, http.StatusNotFound, "audit log is not enabled")
			return
		}
		attempts, err := auditLog.Recent(r.Context(), queryInt(r, "limit", 50))
		if err != nil {
			jsonError(w, http.StatusInternalServerError, err.Error())
			return
		}
		jsonResponse(w, http.StatusOK, attempts)
	})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
