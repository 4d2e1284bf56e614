package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skyfence-labs/skyfence/internal/engine"
	"github.com/skyfence-labs/skyfence/internal/store"
	"github.com/skyfence-labs/skyfence/internal/track"
)

// Server exposes the operator JSON API over the track store and the engine's
// latest cycle snapshot. It is mounted under /api/ by main.
type Server struct {
	store *store.SQLiteStore
	eval  *engine.Evaluator
}

// NewServer creates an API server over the given store and evaluator.
func NewServer(s *store.SQLiteStore, eval *engine.Evaluator) *Server {
	return &Server{store: s, eval: eval}
}

// ServeMux returns the API routing table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/tracks", s.handleTracks)
	mux.HandleFunc("/tracks/", s.handleTrackByID)
	mux.HandleFunc("/engine/stats", s.handleEngineStats)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are already gone; nothing useful left to do
		return
	}
}

// trackJSON is the wire shape of a track.
type trackJSON struct {
	ID             int64   `json:"id"`
	ExternalRef    string  `json:"external_ref"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	SpeedMps       float64 `json:"speed_mps"`
	Identification string  `json:"identification"`
	ThreatScore    int     `json:"threat_score"`
	State          string  `json:"state"`
	UpdatedUnix    float64 `json:"updated_unix"`
}

func toTrackJSON(t track.Track) trackJSON {
	return trackJSON{
		ID:             t.ID,
		ExternalRef:    t.ExternalRef,
		X:              t.X,
		Y:              t.Y,
		SpeedMps:       t.SpeedMps,
		Identification: string(t.Identification),
		ThreatScore:    t.ThreatScore,
		State:          string(t.State),
		UpdatedUnix:    t.UpdatedUnix,
	}
}

// handleTracks serves GET /tracks (list, optional ?state=live|engaged) and
// POST /tracks (create, simulation/operator ingest).
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTracks(w, r)
	case http.MethodPost:
		s.createTrack(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listTracks(w http.ResponseWriter, r *http.Request) {
	var state track.State
	switch strings.ToLower(r.URL.Query().Get("state")) {
	case "":
		state = ""
	case "live":
		state = track.StateLive
	case "engaged":
		state = track.StateEngaged
	default:
		http.Error(w, "state must be live or engaged", http.StatusBadRequest)
		return
	}

	tracks, err := s.store.ListTracks(r.Context(), state)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list tracks: %v", err), http.StatusInternalServerError)
		return
	}

	out := make([]trackJSON, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, toTrackJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

type createTrackRequest struct {
	ExternalRef    string  `json:"external_ref,omitempty"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	SpeedMps       float64 `json:"speed_mps"`
	Identification string  `json:"identification,omitempty"`
}

func (s *Server) createTrack(w http.ResponseWriter, r *http.Request) {
	var req createTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	t := track.Track{
		ExternalRef: req.ExternalRef,
		X:           req.X,
		Y:           req.Y,
		SpeedMps:    req.SpeedMps,
	}
	if req.Identification != "" {
		id, err := track.ParseIdentification(req.Identification)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.Identification = id
	}
	if err := t.ValidateKinematics(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.InsertTrack(r.Context(), &t); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create track: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toTrackJSON(t))
}

// handleTrackByID serves GET /tracks/{id} and POST /tracks/{id}/identification.
func (s *Server) handleTrackByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tracks/")
	parts := strings.Split(rest, "/")

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.getTrack(w, r, id)
	case len(parts) == 2 && parts[1] == "identification":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.setIdentification(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) getTrack(w http.ResponseWriter, r *http.Request, id int64) {
	t, err := s.store.GetTrack(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to get track: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toTrackJSON(*t))
}

type setIdentificationRequest struct {
	Identification string `json:"identification"`
}

// setIdentification records an operator IFF override. It never touches the
// lifecycle state: an engaged track stays engaged even if re-identified.
func (s *Server) setIdentification(w http.ResponseWriter, r *http.Request, id int64) {
	var req setIdentificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ident, err := track.ParseIdentification(req.Identification)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.SetIdentification(r.Context(), id, ident); err != nil {
		http.Error(w, fmt.Sprintf("Failed to set identification: %v", err), http.StatusInternalServerError)
		return
	}

	t, err := s.store.GetTrack(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get track: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toTrackJSON(*t))
}

func (s *Server) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.eval.LastStats())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if _, err := s.store.ListTracks(ctx, track.StateEngaged); err != nil {
		http.Error(w, fmt.Sprintf("store unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
