package viz

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/banshee-data/scanview/internal/monitoring"
	"github.com/banshee-data/scanview/internal/scan"
)

//go:embed status.html
var statusHTML embed.FS

// FrameProvider exposes the most recently published frame. Satisfied by
// scan.Pipeline.
type FrameProvider interface {
	Published() (*scan.Frame, scan.Stats, bool)
}

// Server is the HTTP surface of the viewer: the live page, the websocket
// feed, the echarts debug views, the PNG snapshot and metrics.
type Server struct {
	addr    string
	cfg     scan.Config
	frames  FrameProvider
	hub     *Hub
	device  DeviceIdentity
	server  *http.Server
	started time.Time
	tmpl    *template.Template
}

// DeviceIdentity is shown on the status page.
type DeviceIdentity struct {
	Model        string
	Firmware     string
	Hardware     string
	SerialNumber string
}

// ServerConfig bundles the server dependencies.
type ServerConfig struct {
	Addr    string
	ScanCfg scan.Config
	Frames  FrameProvider
	Hub     *Hub
	Device  DeviceIdentity
}

// NewServer creates the web server. The hub must also be attached to the
// pipeline as a renderer; the server only routes to it.
func NewServer(cfg ServerConfig) (*Server, error) {
	tmpl, err := template.ParseFS(statusHTML, "status.html")
	if err != nil {
		return nil, fmt.Errorf("parse status template: %w", err)
	}
	s := &Server{
		addr:   cfg.Addr,
		cfg:    cfg.ScanCfg,
		frames: cfg.Frames,
		hub:    cfg.Hub,
		device: cfg.Device,
		tmpl:   tmpl,
	}
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.setupRoutes(),
	}
	return s, nil
}

func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStatus)
	mux.Handle("/ws", s.hub)
	mux.HandleFunc("/polar", s.handlePolar)
	mux.HandleFunc("/view3d", s.handleScatter3D)
	mux.HandleFunc("/snapshot.png", s.handleSnapshot)
	mux.HandleFunc("/api/frame", s.handleFrameJSON)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start runs the server in a goroutine and shuts it down gracefully when
// the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.started = time.Now()
	go func() {
		monitoring.Logf("viz: HTTP server listening on %s", s.addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("viz: HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("viz: shutting down HTTP server")
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.server.Close()
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		Device     DeviceIdentity
		Resolution float64
		BinCount   int
		MaxMM      float64
		MinQuality int
		Mirror     bool
		RefreshHz  float64
		Viewers    int
		Uptime     string
	}{
		Device:     s.device,
		Resolution: s.cfg.AngleResolutionDeg,
		BinCount:   s.cfg.BinCount(),
		MaxMM:      s.cfg.MaxDistanceMM,
		MinQuality: s.cfg.MinQuality,
		Mirror:     s.cfg.MirrorHorizontally,
		RefreshHz:  s.cfg.TargetRefreshHz,
		Viewers:    s.hub.ClientCount(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		monitoring.Logf("viz: render status page: %v", err)
	}
}

func (s *Server) handleFrameJSON(w http.ResponseWriter, r *http.Request) {
	f, st, ok := s.frames.Published()
	if !ok {
		s.writeJSONError(w, http.StatusNotFound, "no frame published yet")
		return
	}
	s.writeJSON(w, http.StatusOK, NewFramePayload(f, st))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		monitoring.Logf("viz: encode JSON response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
