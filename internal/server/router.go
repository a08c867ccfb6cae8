package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SmallVagetable/nanobot-hyc/internal/restarter"
)

// Router exposes the restarter over HTTP.
// Endpoints:
//
//	POST {basePath}/restart      run the full resolve/stop/launch flow
//	GET  {basePath}/status       resolve-only probe
//	GET  {basePath}/healthz      liveness of this daemon
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	rst      *restarter.Restarter
	basePath string
	mu       sync.Mutex // restarts are serialized
}

// NewRouter constructs a Router with configurable basePath.
// Example basePath: "/api" results in /api/restart, /api/status.
func NewRouter(rst *restarter.Restarter, basePath string) *Router {
	return &Router{rst: rst, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in
// any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/restart", r.handleRestart)
	group.GET("/status", r.handleStatus)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, rst *restarter.Restarter) (*http.Server, error) {
	r := NewRouter(rst, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // a restart run blocks for grace+kill waits
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleRestart(c *gin.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.rst.Run(c.Request.Context()); err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStatus(c *gin.Context) {
	writeJSON(c, http.StatusOK, r.rst.Status())
}

func (r *Router) handleHealthz(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
