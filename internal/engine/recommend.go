package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

// assignCacheSize covers a full draft's worth of hero subsets many times
// over; entries are tiny and keyed by pool version, so stale versions age
// out on their own.
const assignCacheSize = 8192

// Engine is the stateless recommendation core. Safe for concurrent use; the
// only shared structure is the thread-safe assignment cache.
type Engine struct {
	log         *zap.Logger
	assignCache *lru.Cache[string, *assignCore]
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New[string, *assignCore](assignCacheSize)
	if err != nil {
		// Only reachable with a non-positive size constant.
		panic(err)
	}
	return &Engine{log: log, assignCache: cache}
}

// TurnInfo describes the sequence step the recommendations are for.
type TurnInfo struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Limit     int    `json:"limit"`
	Progress  int    `json:"progress"`
	Remaining int    `json:"remaining"`
}

// ScoredCandidate is one ranked recommendation.
type ScoredCandidate struct {
	Hero             string     `json:"hero"`
	Score            float64    `json:"score"`
	TierScore        float64    `json:"tierScore"`
	PredictedRoles   []string   `json:"predictedRoles"`
	Components       Components `json:"components"`
	Reasons          []string   `json:"reasons"`
	Phase            Phase      `json:"phase"`
	BaseScore        float64    `json:"baseScore"`
	LookaheadPenalty float64    `json:"lookaheadPenalty,omitempty"`
}

// Recommendation is the full engine output for one draft snapshot.
type Recommendation struct {
	Mode            ActionType              `json:"mode,omitempty"`
	Side            Side                    `json:"side,omitempty"`
	Turn            *TurnInfo               `json:"turn"`
	Composition     map[Side]RoleAssignment `json:"composition"`
	Recommendations []ScoredCandidate       `json:"recommendations"`
	Warnings        []string                `json:"warnings"`
	Message         string                  `json:"message,omitempty"`
	PoolVersion     string                  `json:"poolVersion"`
}

// Recommend validates the draft snapshot, resolves the current sequence
// action, and returns ranked candidates: 2-ply lookahead for picks,
// single-ply for bans. A completed sequence yields an empty list, not an
// error.
func (r *Engine) Recommend(ctx context.Context, snap *pool.Snapshot, state DraftState, cfg LookaheadConfig) (*Recommendation, error) {
	started := time.Now()
	st, err := normalizeState(state, snap)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	idx, progress, act := currentAction(st)
	st.TurnIndex, st.ActionProgress = idx, progress

	taken := st.taken()
	composition := map[Side]RoleAssignment{
		SideAlly:  r.assignmentForSide(snap, st.Picks[SideAlly], taken),
		SideEnemy: r.assignmentForSide(snap, st.Picks[SideEnemy], taken),
	}
	warnings := snapshotWarnings(snap)
	for _, side := range [2]Side{SideAlly, SideEnemy} {
		if !composition[side].IsFeasible {
			warnings = append(warnings, fmt.Sprintf(
				"%s composition is infeasible: a full five-role lineup is no longer reachable", side))
		}
	}

	out := &Recommendation{
		Composition:     composition,
		Recommendations: []ScoredCandidate{},
		Warnings:        warnings,
		PoolVersion:     snap.Version,
	}
	if act == nil {
		out.Message = "draft sequence complete"
		return out, nil
	}

	var evals []candidateEval
	if act.Type == ActionPick {
		evals = r.rankPicks(ctx, snap, st, act.Side, cfg)
	} else {
		evals = r.rankBans(snap, st, act.Side)
	}

	out.Mode = act.Type
	out.Side = act.Side
	out.Turn = &TurnInfo{
		Index:     idx,
		Text:      act.Text,
		Limit:     act.Limit,
		Progress:  progress,
		Remaining: max(act.Limit-progress, 0),
	}
	for _, ev := range evals {
		out.Recommendations = append(out.Recommendations, ScoredCandidate{
			Hero:             ev.Hero,
			Score:            round(ev.Score, 4),
			TierScore:        round(snap.Profiles[ev.Hero].TierScore, 4),
			PredictedRoles:   ev.PredictedRoles,
			Components:       roundComponents(ev.Components),
			Reasons:          r.reasons(snap, st, act.Side, act.Type, ev),
			Phase:            ev.Phase,
			BaseScore:        round(ev.BaseScore, 6),
			LookaheadPenalty: ev.LookaheadPenalty,
		})
	}

	r.log.Debug("recommendation computed",
		zap.String("mode", string(act.Type)),
		zap.String("side", string(act.Side)),
		zap.Int("candidates", len(evals)),
		zap.String("pool_version", snap.Version),
		zap.Duration("elapsed", time.Since(started)))
	return out, nil
}

// AssignHeroes is the standalone assignment interface: a bare list of up to
// five known hero ids in, a RoleAssignment out.
func (r *Engine) AssignHeroes(snap *pool.Snapshot, heroes []string) (RoleAssignment, error) {
	// The raw list is bounded before any normalization; a 7-entry payload is
	// rejected even when duplicates would dedup it under the cap.
	if len(heroes) > pool.RoleCount {
		return RoleAssignment{}, fmt.Errorf("%w: hero list exceeds %d entries", ErrValidation, pool.RoleCount)
	}
	ids := make([]string, 0, len(heroes))
	for _, raw := range heroes {
		id := pool.NormalizeHeroID(raw)
		if id == "" || slices.Contains(ids, id) {
			continue
		}
		if _, known := snap.Profiles[id]; !known {
			return RoleAssignment{}, fmt.Errorf("%w: unknown hero %q", ErrValidation, id)
		}
		ids = append(ids, id)
	}
	unavailable := make(map[string]bool, len(ids))
	for _, id := range ids {
		unavailable[id] = true
	}
	return r.assignmentForSide(snap, ids, unavailable), nil
}

// componentContribution pairs a component with its weighted share of the
// final score, for reason selection.
type componentContribution struct {
	name  string
	value float64
}

// reasons picks the components carrying the largest positive share of the
// blended score, drops anything under the 5% materiality threshold, and
// renders each as a concrete justification. Degrades to fewer reasons
// rather than fabricating one.
func (r *Engine) reasons(snap *pool.Snapshot, st DraftState, side Side, action ActionType, ev candidateEval) []string {
	if ev.BaseScore <= 0 {
		return []string{}
	}
	w := PhaseWeights[ev.Phase]
	contribs := []componentContribution{
		{"meta", w.Meta * ev.Components.Meta},
		{"counter", w.Counter * ev.Components.Counter},
		{"synergy", w.Synergy * ev.Components.Synergy},
		{"deny", w.Deny * ev.Components.Deny},
		{"flex", w.Flex * ev.Components.Flex},
		{"feasibility", w.Feasibility * ev.Components.Feasibility},
	}
	slices.SortStableFunc(contribs, func(a, b componentContribution) int {
		switch {
		case a.value > b.value:
			return -1
		case a.value < b.value:
			return 1
		default:
			return 0
		}
	})

	const maxReasons = 3
	threshold := 0.05 * ev.BaseScore
	out := make([]string, 0, maxReasons)
	for _, c := range contribs {
		if len(out) == maxReasons || c.value < threshold {
			break
		}
		if text := r.renderReason(snap, st, side, action, ev, c.name); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func (r *Engine) renderReason(snap *pool.Snapshot, st DraftState, side Side, action ActionType, ev candidateEval, component string) string {
	profile := snap.Profiles[ev.Hero]
	switch component {
	case "meta":
		if profile.Meta.Tier != "" {
			return fmt.Sprintf("tier %s meta presence this patch", profile.Meta.Tier)
		}
		return "high pick and win rates this patch"
	case "counter":
		if best := bestMatchup(profile, st.Picks[side.Opponent()], true); best != "" {
			return fmt.Sprintf("strong counter vs. %s", best)
		}
		return ""
	case "synergy":
		if best := bestSynergy(profile, st.Picks[side]); best != "" {
			return fmt.Sprintf("pairs well with %s", best)
		}
		return ""
	case "deny":
		if action == ActionBan {
			return "removes a priority pick from the enemy pool"
		}
		// Raw threat, matching denyScore; netting out counteredBy here could
		// name a hero that never drove the component.
		if best := bestMatchup(profile, st.Picks[side], false); best != "" {
			return fmt.Sprintf("denies the enemy a direct threat to %s", best)
		}
		return "denies the enemy a power pick"
	case "flex":
		if n := len(profile.PossibleRoles); n > 1 {
			return fmt.Sprintf("flexes across %d roles", n)
		}
		return ""
	case "feasibility":
		if len(ev.PredictedRoles) > 0 && ev.Components.Feasibility > 0 {
			return fmt.Sprintf("fills open %s", ev.PredictedRoles[0])
		}
		return ""
	}
	return ""
}

// bestMatchup returns the opposing hero the profile has the largest net
// advantage against, empty when there is no positive matchup.
func bestMatchup(p *pool.HeroProfile, picks []string, netOfWeakness bool) string {
	best, bestVal := "", 0.0
	for _, h := range picks {
		v := p.StrongAgainst[h]
		if netOfWeakness {
			v -= p.CounteredBy[h]
		}
		if v > bestVal || (v == bestVal && v > 0 && (best == "" || h < best)) {
			best, bestVal = h, v
		}
	}
	return best
}

func bestSynergy(p *pool.HeroProfile, picks []string) string {
	best, bestVal := "", 0.0
	for _, h := range picks {
		v := p.SynergyWith[h]
		if v > bestVal || (v == bestVal && v > 0 && (best == "" || h < best)) {
			best, bestVal = h, v
		}
	}
	return best
}

func roundComponents(c Components) Components {
	return Components{
		Meta:        round(c.Meta, 4),
		Counter:     round(c.Counter, 4),
		Synergy:     round(c.Synergy, 4),
		Deny:        round(c.Deny, 4),
		Flex:        round(c.Flex, 4),
		Feasibility: round(c.Feasibility, 4),
	}
}

func snapshotWarnings(snap *pool.Snapshot) []string {
	const maxCarried = 30
	n := min(len(snap.Warnings), maxCarried)
	return slices.Clone(snap.Warnings[:n])
}
