// Package types holds the wire DTOs shared by the HTTP and WebSocket
// surfaces. Responses embed engine output directly; only the inbound shapes
// live here.
package types

// SidePair carries hero id lists for both sides of the draft.
type SidePair struct {
	Ally  []string `json:"ally"`
	Enemy []string `json:"enemy"`
}

// LookaheadConfig overrides the search defaults. Nil fields keep the
// defaults (enabled, beamWidth 6, enemyTopN 4, penaltyFactor 0.25).
type LookaheadConfig struct {
	Enabled       *bool    `json:"enabled,omitempty"`
	BeamWidth     *int     `json:"beamWidth,omitempty"`
	EnemyTopN     *int     `json:"enemyTopN,omitempty"`
	PenaltyFactor *float64 `json:"penaltyFactor,omitempty"`
}

// RecommendRequest is one complete draft snapshot. Nothing about the draft
// is stored server-side between calls.
type RecommendRequest struct {
	Patch          string           `json:"patch,omitempty"`
	SequenceKey    string           `json:"sequenceKey,omitempty"`
	TurnIndex      int              `json:"turnIndex"`
	ActionProgress int              `json:"actionProgress"`
	Picks          SidePair         `json:"picks"`
	Bans           SidePair         `json:"bans"`
	Lookahead      *LookaheadConfig `json:"lookahead,omitempty"`
}

// AssignRequest is the standalone assignment payload. Either a bare hero
// list, or picks plus a side selector for UI convenience.
type AssignRequest struct {
	Heroes []string  `json:"heroes,omitempty"`
	Picks  *SidePair `json:"picks,omitempty"`
	Side   string    `json:"side,omitempty"`
}

// ErrorResponse is the JSON error body for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
