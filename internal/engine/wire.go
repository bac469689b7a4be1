package engine

import "github.com/draftlab/mlbb-draft-backend/pkg/types"

// StateFromRequest maps the wire payload onto a DraftState. Hero id
// normalization and all invariant checks happen later, in Recommend.
func StateFromRequest(req *types.RecommendRequest) DraftState {
	st := NewDraftState()
	st.Patch = req.Patch
	if req.SequenceKey != "" {
		st.SequenceKey = req.SequenceKey
	}
	st.TurnIndex = req.TurnIndex
	st.ActionProgress = req.ActionProgress
	st.Picks[SideAlly] = req.Picks.Ally
	st.Picks[SideEnemy] = req.Picks.Enemy
	st.Bans[SideAlly] = req.Bans.Ally
	st.Bans[SideEnemy] = req.Bans.Enemy
	return st
}

// LookaheadFromRequest overlays optional wire overrides on the defaults.
func LookaheadFromRequest(cfg *types.LookaheadConfig) LookaheadConfig {
	out := DefaultLookahead()
	if cfg == nil {
		return out
	}
	if cfg.Enabled != nil {
		out.Enabled = *cfg.Enabled
	}
	if cfg.BeamWidth != nil {
		out.BeamWidth = *cfg.BeamWidth
	}
	if cfg.EnemyTopN != nil {
		out.EnemyTopN = *cfg.EnemyTopN
	}
	if cfg.PenaltyFactor != nil {
		out.PenaltyFactor = *cfg.PenaltyFactor
	}
	return out
}

// HeroesFromAssignRequest accepts either the bare hero list or the legacy
// picks+side payload older UI builds still send.
func HeroesFromAssignRequest(req *types.AssignRequest) []string {
	if req.Heroes != nil {
		return req.Heroes
	}
	if req.Picks == nil {
		return nil
	}
	if req.Side == string(SideEnemy) {
		return req.Picks.Enemy
	}
	return req.Picks.Ally
}
