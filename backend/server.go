package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/model"
	"go-pianoroll/transform"
)

// TransformRequest is the body of a delegated transform
type TransformRequest struct {
	Notes     []model.WireNote `json:"notes"`
	Key       string           `json:"key"`
	ScaleType string           `json:"scale_type"`
}

// TransformResponse carries the replacement notes, or an error message
type TransformResponse struct {
	Counterpoint []model.WireNote `json:"counterpoint,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// SaveRequest is the body of /save-midi
type SaveRequest struct {
	Notes []model.WireNote `json:"notes"`
}

// Server is the generation backend
type Server struct {
	router  *mux.Router
	handler http.Handler
}

// NewServer builds the routes. Browsers from origins may call it.
func NewServer(origins []string) *Server {
	s := &Server{router: mux.NewRouter().StrictSlash(true)}
	s.router.Use(logRequests)
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/generate", s.handleGenerate).Methods("GET")
	s.router.HandleFunc("/generate_counterpoint", s.handleCounterpoint).Methods("POST")
	s.router.HandleFunc("/save-midi", s.handleSave).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	s.handler = c.Handler(s.router)
	return s
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.handler, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	debug.Log("backend", "listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		debug.Log("backend", "%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Warn("backend", "encode response: %v", err)
	}
}

func writeMIDI(w http.ResponseWriter, doc model.Document, filename string) {
	var buf bytes.Buffer
	if err := midi.Write(&buf, doc); err != nil {
		writeJSON(w, http.StatusInternalServerError, TransformResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(buf.Bytes())
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "MIDI Editor Backend"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	writeMIDI(w, GenerateScale(), "generated.mid")
}

func (s *Server) handleCounterpoint(w http.ResponseWriter, r *http.Request) {
	var req TransformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, TransformResponse{Error: "bad request body: " + err.Error()})
		return
	}
	root, err := transform.KeyRoot(req.Key)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, TransformResponse{Error: err.Error()})
		return
	}
	scaleType := req.ScaleType
	if scaleType == "" {
		scaleType = "major"
	}
	intervals, ok := transform.Scales[scaleType]
	if !ok {
		writeJSON(w, http.StatusBadRequest, TransformResponse{Error: "unknown scale " + scaleType})
		return
	}
	if len(req.Notes) == 0 {
		writeJSON(w, http.StatusBadRequest, TransformResponse{Error: "no notes"})
		return
	}

	out := Counterpoint(req.Notes, root, intervals)
	debug.Log("backend", "counterpoint in %s %s: %d notes -> %d", req.Key, scaleType, len(req.Notes), len(out))
	writeJSON(w, http.StatusOK, TransformResponse{Counterpoint: out})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, TransformResponse{Error: "bad request body: " + err.Error()})
		return
	}
	doc := model.Document{Tracks: []model.Track{{Notes: model.FromWire(req.Notes)}}}
	writeMIDI(w, model.SanitizeDocument(doc), "edited.mid")
}
