package engine

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

// LookaheadConfig bounds the 2-ply search. Zero values fall back to the
// documented defaults.
type LookaheadConfig struct {
	Enabled       bool
	BeamWidth     int
	EnemyTopN     int
	PenaltyFactor float64
}

const (
	defaultBeamWidth     = 6
	defaultEnemyTopN     = 4
	defaultPenaltyFactor = 0.25
)

// DefaultLookahead returns the stock configuration: enabled, beam 6,
// enemy top 4, penalty 0.25.
func DefaultLookahead() LookaheadConfig {
	return LookaheadConfig{
		Enabled:       true,
		BeamWidth:     defaultBeamWidth,
		EnemyTopN:     defaultEnemyTopN,
		PenaltyFactor: defaultPenaltyFactor,
	}
}

func (c LookaheadConfig) withDefaults() LookaheadConfig {
	if c.BeamWidth <= 0 {
		c.BeamWidth = defaultBeamWidth
	}
	if c.EnemyTopN <= 0 {
		c.EnemyTopN = defaultEnemyTopN
	}
	if c.PenaltyFactor <= 0 {
		c.PenaltyFactor = defaultPenaltyFactor
	}
	return c
}

// errBudgetExceeded is internal only. It aborts the second ply; the caller
// falls back to the completed single-ply ranking instead of failing.
var errBudgetExceeded = errors.New("search budget exceeded")

// legalCandidates lists every hero not picked or banned on either side, in
// ascending id order so downstream ranking is independent of input order.
func legalCandidates(snap *pool.Snapshot, st DraftState) []string {
	taken := st.taken()
	out := make([]string, 0, len(snap.HeroIDs()))
	for _, id := range snap.HeroIDs() {
		if !taken[id] {
			out = append(out, id)
		}
	}
	return out
}

// rankPicks ranks every legal candidate for a pick action. The top
// beamWidth candidates by immediate score form the frontier; each frontier
// member is re-valued by subtracting a penalty for the opponent's best
// immediate responses and the frontier is re-ordered among itself, staying
// ahead of the unanalyzed tail. Ties break on immediate score, then hero
// id, never on iteration order.
func (e *Engine) rankPicks(ctx context.Context, snap *pool.Snapshot, st DraftState, side Side, cfg LookaheadConfig) []candidateEval {
	evals := make([]candidateEval, 0, len(snap.HeroIDs()))
	for _, hero := range legalCandidates(snap, st) {
		evals = append(evals, e.evalCandidate(snap, st, side, ActionPick, hero))
	}
	sortByImmediate(evals)
	if !cfg.Enabled || len(evals) == 0 {
		return evals
	}

	frontier := min(cfg.BeamWidth, len(evals))
	penalties := make([]float64, frontier)

	// Frontier members are independent; errgroup scores them concurrently
	// into index-addressed slots so scheduling cannot change the output.
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < frontier; i++ {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return errBudgetExceeded
			}
			after := applyHero(st, evals[i].Hero)
			resp, err := e.opponentBestResponse(gctx, snap, after, side.Opponent(), cfg.EnemyTopN)
			if err != nil {
				return err
			}
			penalties[i] = cfg.PenaltyFactor * resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Second ply incomplete: the single-ply ranking is the best fully
		// completed level, return it untouched.
		return evals
	}

	for i := 0; i < frontier; i++ {
		evals[i].LookaheadPenalty = round(penalties[i], 6)
		evals[i].Score = round(evals[i].BaseScore-penalties[i], 6)
	}
	// Re-rank the frontier among itself only. The tail was already judged
	// worse at ply one and keeps its immediate order behind the frontier;
	// sorting it against penalized scores would promote exactly the
	// candidates the search skipped.
	sortByValue(evals[:frontier])
	return evals
}

// opponentBestResponse averages the top-N single-ply pick scores available
// to the opposing side from the simulated state, under that side's own
// phase weights at its resulting pick index.
func (e *Engine) opponentBestResponse(ctx context.Context, snap *pool.Snapshot, st DraftState, opponent Side, topN int) (float64, error) {
	scores := make([]float64, 0, len(snap.HeroIDs()))
	for _, hero := range legalCandidates(snap, st) {
		if ctx.Err() != nil {
			return 0, errBudgetExceeded
		}
		ev := e.evalCandidate(snap, st, opponent, ActionPick, hero)
		scores = append(scores, ev.BaseScore)
	}
	if len(scores) == 0 {
		return 0, nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))
	n := min(topN, len(scores))
	total := 0.0
	for _, s := range scores[:n] {
		total += s
	}
	return total / float64(n), nil
}

// rankBans is single-ply by design: ban latency stays flat and the deny
// weighting already encodes the adversarial intent.
func (e *Engine) rankBans(snap *pool.Snapshot, st DraftState, side Side) []candidateEval {
	evals := make([]candidateEval, 0, len(snap.HeroIDs()))
	for _, hero := range legalCandidates(snap, st) {
		evals = append(evals, e.evalCandidate(snap, st, side, ActionBan, hero))
	}
	sortByImmediate(evals)
	return evals
}

func sortByImmediate(evals []candidateEval) {
	sort.Slice(evals, func(i, j int) bool {
		if evals[i].BaseScore != evals[j].BaseScore {
			return evals[i].BaseScore > evals[j].BaseScore
		}
		return evals[i].Hero < evals[j].Hero
	})
}

func sortByValue(evals []candidateEval) {
	sort.Slice(evals, func(i, j int) bool {
		if evals[i].Score != evals[j].Score {
			return evals[i].Score > evals[j].Score
		}
		if evals[i].BaseScore != evals[j].BaseScore {
			return evals[i].BaseScore > evals[j].BaseScore
		}
		return evals[i].Hero < evals[j].Hero
	})
}
