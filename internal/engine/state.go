// Package engine is the draft recommendation core: role assignment, phase
// weighted component scoring, and a 2-ply beam lookahead over pick
// candidates. It is stateless and synchronous; every request works on its
// own DraftState snapshot against one immutable pool version.
package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

// ErrValidation marks a malformed draft request. The request is rejected
// outright; there is never a partial result.
var ErrValidation = errors.New("invalid draft request")

type Side string

const (
	SideAlly  Side = "ally"
	SideEnemy Side = "enemy"
)

func (s Side) Opponent() Side {
	if s == SideAlly {
		return SideEnemy
	}
	return SideAlly
}

type ActionType string

const (
	ActionPick ActionType = "pick"
	ActionBan  ActionType = "ban"
)

// SequenceStep is one entry of the fixed macro-sequence. The engine consumes
// the sequence; it does not own draft progression.
type SequenceStep struct {
	Type  ActionType `json:"type"`
	Side  Side       `json:"side"`
	Count int        `json:"count"`
	Text  string     `json:"text"`
}

const SequenceKeyStandardBo5 = "mlbb_standard_bo5"

// StandardSequence is the MLBB tournament bo5 ban/pick order.
var StandardSequence = []SequenceStep{
	{Type: ActionBan, Side: SideAlly, Count: 2, Text: "Ally ban 2 heroes"},
	{Type: ActionBan, Side: SideEnemy, Count: 2, Text: "Enemy ban 2 heroes"},
	{Type: ActionBan, Side: SideAlly, Count: 1, Text: "Ally ban 1 hero"},
	{Type: ActionBan, Side: SideEnemy, Count: 1, Text: "Enemy ban 1 hero"},
	{Type: ActionPick, Side: SideAlly, Count: 1, Text: "Ally pick 1 hero"},
	{Type: ActionPick, Side: SideEnemy, Count: 2, Text: "Enemy pick 2 heroes"},
	{Type: ActionPick, Side: SideAlly, Count: 2, Text: "Ally pick 2 heroes"},
	{Type: ActionPick, Side: SideEnemy, Count: 1, Text: "Enemy pick 1 hero"},
	{Type: ActionBan, Side: SideEnemy, Count: 1, Text: "Enemy ban 1 hero"},
	{Type: ActionBan, Side: SideAlly, Count: 1, Text: "Ally ban 1 hero"},
	{Type: ActionBan, Side: SideEnemy, Count: 1, Text: "Enemy ban 1 hero"},
	{Type: ActionBan, Side: SideAlly, Count: 1, Text: "Ally ban 1 hero"},
	{Type: ActionPick, Side: SideEnemy, Count: 1, Text: "Enemy pick 1 hero"},
	{Type: ActionPick, Side: SideAlly, Count: 2, Text: "Ally pick 2 last heroes"},
	{Type: ActionPick, Side: SideEnemy, Count: 1, Text: "Enemy pick 1 last hero"},
}

// DraftState is a complete draft snapshot supplied by the caller. Picks are
// ordered, bans are order-insignificant sets carried as lists.
type DraftState struct {
	Patch          string
	SequenceKey    string
	TurnIndex      int
	ActionProgress int
	Picks          map[Side][]string
	Bans           map[Side][]string
}

// NewDraftState returns an empty state at the top of the standard sequence.
func NewDraftState() DraftState {
	return DraftState{
		SequenceKey: SequenceKeyStandardBo5,
		Picks:       map[Side][]string{SideAlly: {}, SideEnemy: {}},
		Bans:        map[Side][]string{SideAlly: {}, SideEnemy: {}},
	}
}

func (s DraftState) clone() DraftState {
	out := s
	out.Picks = map[Side][]string{
		SideAlly:  slices.Clone(s.Picks[SideAlly]),
		SideEnemy: slices.Clone(s.Picks[SideEnemy]),
	}
	out.Bans = map[Side][]string{
		SideAlly:  slices.Clone(s.Bans[SideAlly]),
		SideEnemy: slices.Clone(s.Bans[SideEnemy]),
	}
	return out
}

// taken returns every hero id that is picked or banned on either side. Hero
// pools are shared, so all four collections block further use.
func (s DraftState) taken() map[string]bool {
	out := make(map[string]bool, 16)
	for _, side := range [2]Side{SideAlly, SideEnemy} {
		for _, h := range s.Picks[side] {
			out[h] = true
		}
		for _, h := range s.Bans[side] {
			out[h] = true
		}
	}
	return out
}

// Action is the sequence step the draft is currently inside, with its
// effective per-step limit.
type Action struct {
	SequenceStep
	Limit int
}

// currentAction resolves (turnIndex, actionProgress) against the sequence,
// skipping exhausted steps. Pick limits are trimmed so a side never exceeds
// five picks even if the sequence tail would allow it.
func currentAction(s DraftState) (int, int, *Action) {
	idx, progress := max(s.TurnIndex, 0), max(s.ActionProgress, 0)
	for idx < len(StandardSequence) {
		step := StandardSequence[idx]
		limit := step.Count
		if step.Type == ActionPick {
			remaining := pool.RoleCount - len(s.Picks[step.Side])
			limit = min(limit, max(remaining+progress, 0))
		}
		if limit <= 0 || progress >= limit {
			idx++
			progress = 0
			continue
		}
		return idx, progress, &Action{SequenceStep: step, Limit: limit}
	}
	return idx, progress, nil
}

// applyHero hypothetically commits hero at the current action and advances
// the cursor. Used only by the lookahead; it never mutates the input.
func applyHero(s DraftState, hero string) DraftState {
	out := s.clone()
	idx, progress, act := currentAction(out)
	if act == nil || out.taken()[hero] {
		return out
	}
	if act.Type == ActionPick {
		out.Picks[act.Side] = append(out.Picks[act.Side], hero)
	} else {
		out.Bans[act.Side] = append(out.Bans[act.Side], hero)
	}
	out.TurnIndex = idx
	out.ActionProgress = progress + 1

	out.TurnIndex, out.ActionProgress, _ = currentAction(out)
	return out
}

// sideBanLimit is the total bans the sequence grants a side.
func sideBanLimit(side Side) int {
	total := 0
	for _, step := range StandardSequence {
		if step.Type == ActionBan && step.Side == side {
			total += step.Count
		}
	}
	return total
}

// normalizeState canonicalizes hero ids and enforces the request invariants:
// every id known to the pool, no duplicate inside any single collection, no
// hero picked by both sides, and per-side totals within the sequence limits.
// The same id across different collections (say, ally bans and enemy picks)
// is accepted; stale scouting data produces exactly that shape.
func normalizeState(s DraftState, snap *pool.Snapshot) (DraftState, error) {
	out := NewDraftState()
	out.Patch = s.Patch
	if s.SequenceKey != "" {
		out.SequenceKey = s.SequenceKey
	}
	out.TurnIndex = max(s.TurnIndex, 0)
	out.ActionProgress = max(s.ActionProgress, 0)

	for _, side := range [2]Side{SideAlly, SideEnemy} {
		picks, err := normalizeCollection(s.Picks[side], snap, fmt.Sprintf("%s picks", side))
		if err != nil {
			return out, err
		}
		bans, err := normalizeCollection(s.Bans[side], snap, fmt.Sprintf("%s bans", side))
		if err != nil {
			return out, err
		}
		out.Picks[side] = picks
		out.Bans[side] = bans
	}

	for _, h := range out.Picks[SideAlly] {
		if slices.Contains(out.Picks[SideEnemy], h) {
			return out, fmt.Errorf("%w: hero %q picked by both sides", ErrValidation, h)
		}
	}
	for _, side := range [2]Side{SideAlly, SideEnemy} {
		if len(out.Picks[side]) > pool.RoleCount {
			return out, fmt.Errorf("%w: %s side has %d picks, max %d",
				ErrValidation, side, len(out.Picks[side]), pool.RoleCount)
		}
		if limit := sideBanLimit(side); len(out.Bans[side]) > limit {
			return out, fmt.Errorf("%w: %s side has %d bans, sequence allows %d",
				ErrValidation, side, len(out.Bans[side]), limit)
		}
	}
	return out, nil
}

func normalizeCollection(ids []string, snap *pool.Snapshot, what string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := pool.NormalizeHeroID(raw)
		if id == "" {
			continue
		}
		if _, known := snap.Profiles[id]; !known {
			return nil, fmt.Errorf("%w: unknown hero %q in %s", ErrValidation, id, what)
		}
		if slices.Contains(out, id) {
			return nil, fmt.Errorf("%w: hero %q duplicated in %s", ErrValidation, id, what)
		}
		out = append(out, id)
	}
	return out, nil
}
