package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/draftlab/mlbb-draft-backend/internal/engine"
	"github.com/draftlab/mlbb-draft-backend/internal/pool"
	"github.com/draftlab/mlbb-draft-backend/pkg/types"
)

// recommendBudget bounds per-request compute. The engine degrades to its
// single-ply ranking when the deadline hits instead of erroring.
const recommendBudget = 250 * time.Millisecond

type Server struct {
	eng   *engine.Engine
	store *pool.Store
	log   *zap.Logger
}

func NewServer(eng *engine.Engine, store *pool.Store, log *zap.Logger) *Server {
	return &Server{eng: eng, store: store, log: log}
}

func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req types.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Snapshot-at-entry: the whole request runs against this pool version
	// even if a reload lands mid-flight.
	snap := s.store.Snapshot()

	ctx, cancel := context.WithTimeout(r.Context(), recommendBudget)
	defer cancel()

	rec, err := s.eng.Recommend(ctx, snap, engine.StateFromRequest(&req), engine.LookaheadFromRequest(req.Lookahead))
	if err != nil {
		if errors.Is(err, engine.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("recommend failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) Assign(w http.ResponseWriter, r *http.Request) {
	var req types.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	snap := s.store.Snapshot()

	assignment, err := s.eng.AssignHeroes(snap, engine.HeroesFromAssignRequest(&req))
	if err != nil {
		if errors.Is(err, engine.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("assign failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Roles       []string              `json:"roles"`
		Assignment  engine.RoleAssignment `json:"assignment"`
		PoolVersion string                `json:"poolVersion"`
	}{
		Roles:       snap.Roles,
		Assignment:  assignment,
		PoolVersion: snap.Version,
	})
}

// Meta exposes the pool and scoring configuration the engine is serving
// with, for UI display and debugging.
func (s *Server) Meta(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, struct {
		Version       string                               `json:"version"`
		Source        string                               `json:"source"`
		Roles         []string                             `json:"roles"`
		HeroCount     int                                  `json:"heroCount"`
		FlexHeroCount int                                  `json:"flexHeroCount"`
		SequenceKey   string                               `json:"sequenceKey"`
		Sequence      []engine.SequenceStep                `json:"sequence"`
		PhaseWeights  map[engine.Phase]engine.WeightVector `json:"phaseWeights"`
		Warnings      []string                             `json:"warnings"`
	}{
		Version:       snap.Version,
		Source:        snap.Source,
		Roles:         snap.Roles,
		HeroCount:     len(snap.Profiles),
		FlexHeroCount: snap.FlexHeroCount(),
		SequenceKey:   engine.SequenceKeyStandardBo5,
		Sequence:      engine.StandardSequence,
		PhaseWeights:  engine.PhaseWeights,
		Warnings:      snap.Warnings,
	})
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}
