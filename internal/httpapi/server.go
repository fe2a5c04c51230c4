// Package httpapi serves the browser comparison view and its JSON API.
//
// The server is a thin shell over the store and the benchmark suite: it
// can kick off one background run at a time, report its progress, and
// serve stored results with per-metric rankings for the comparison table.
package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hostbench/hostbench/internal/bench"
	"github.com/hostbench/hostbench/internal/compare"
	"github.com/hostbench/hostbench/internal/logger"
	"github.com/hostbench/hostbench/internal/store"
)

//go:embed web/index.html
var webFS embed.FS

// RunFunc executes a full benchmark run, reporting progress through the
// callback. The CLI wires in the real suite; tests inject fakes.
type RunFunc func(ctx context.Context, progress bench.ProgressFunc) (*bench.HostResult, error)

// runState tracks the single in-flight (or most recent) background run.
type runState struct {
	Running  bool      `json:"running"`
	Step     int       `json:"step"`
	Total    int       `json:"total"`
	Probe    string    `json:"probe"`
	Message  string    `json:"message"`
	Error    string    `json:"error,omitempty"`
	HostID   string    `json:"host_id,omitempty"`
	Finished time.Time `json:"finished,omitzero"`
}

// Server is the HTTP comparison server.
type Server struct {
	store *store.Store
	run   RunFunc
	log   logger.Logger

	mu    sync.Mutex
	state runState
}

// New creates a Server over the given store and run function.
func New(st *store.Store, run RunFunc, log logger.Logger) *Server {
	return &Server{store: st, run: run, log: log}
}

// Router builds the chi router with all routes and middleware mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Post("/run", s.handleRun)
		r.Get("/status", s.handleStatus)
		r.Get("/results", s.handleResults)
		r.Delete("/results", s.handleClear)
		r.Delete("/results/{hostID}", s.handleDelete)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http %s %s -> %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, "page missing from build", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleRun starts a background benchmark run. Only one run at a time; a
// second request while one is in flight gets 409.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.state.Running {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "a benchmark run is already in progress")
		return
	}
	s.state = runState{Running: true, Total: bench.SuiteSteps, Message: "starting"}
	s.mu.Unlock()

	go s.runInBackground()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "started"})
}

func (s *Server) runInBackground() {
	progress := func(step, total int, probe, message string) {
		s.mu.Lock()
		s.state.Step = step
		s.state.Total = total
		s.state.Probe = probe
		s.state.Message = message
		s.mu.Unlock()
	}

	result, err := s.run(context.Background(), progress)
	if err == nil {
		err = s.store.Upsert(result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = false
	s.state.Finished = time.Now()
	if err != nil {
		s.log.Error("background run failed: %v", err)
		s.state.Error = err.Error()
		return
	}
	s.state.HostID = result.HostID
	s.state.Message = "done"
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	writeJSON(w, state)
}

// resultsResponse carries both the raw records and the per-metric
// rankings, so the page doesn't reimplement directionality.
type resultsResponse struct {
	Hosts    []*bench.HostResult `json:"hosts"`
	Rankings []rankingJSON       `json:"rankings"`
}

type rankingJSON struct {
	Metric  string             `json:"metric"`
	Label   string             `json:"label"`
	Lower   bool               `json:"lower_is_better"`
	Values  map[string]float64 `json:"values"`
	Winners []string           `json:"winners"`
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := resultsResponse{Hosts: results, Rankings: []rankingJSON{}}
	for _, ranking := range compare.Rank(results) {
		if len(ranking.Values) == 0 {
			continue
		}
		resp.Rankings = append(resp.Rankings, rankingJSON{
			Metric:  ranking.Metric,
			Label:   compare.MetricLabel(ranking.Metric),
			Lower:   ranking.Direction == compare.LowerIsBetter,
			Values:  ranking.Values,
			Winners: ranking.Winners,
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	hostID := chi.URLParam(r, "hostID")
	existed, err := s.store.Delete(hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "no result for host "+hostID)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "host_id": hostID})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
