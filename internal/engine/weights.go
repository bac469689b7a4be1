package engine

// Phase is the acting side's own progress through its five picks. It is
// derived from that side's pick count alone, never from the global turn
// index.
type Phase string

const (
	PhaseEarly Phase = "early"
	PhaseMid   Phase = "mid"
	PhaseLate  Phase = "late"
	PhaseBan   Phase = "ban"
)

// WeightVector blends the six components into a final score. Every vector
// sums to exactly 1.0, which keeps blended scores on the component [0,100]
// scale.
type WeightVector struct {
	Meta        float64 `json:"meta"`
	Counter     float64 `json:"counter"`
	Synergy     float64 `json:"synergy"`
	Deny        float64 `json:"deny"`
	Flex        float64 `json:"flex"`
	Feasibility float64 `json:"feasibility"`
}

// PhaseWeights is pure configuration keyed by phase, not branching logic.
// Early drafting chases meta strength and flexibility, mid pivots into
// counters and synergy, the last pick commits to matchups and coverage.
// Bans always use the one ban vector: deny leads, flex barely matters.
var PhaseWeights = map[Phase]WeightVector{
	PhaseEarly: {Meta: 0.40, Counter: 0.11, Synergy: 0.06, Deny: 0.14, Flex: 0.15, Feasibility: 0.14},
	PhaseMid:   {Meta: 0.29, Counter: 0.27, Synergy: 0.18, Deny: 0.12, Flex: 0.09, Feasibility: 0.05},
	PhaseLate:  {Meta: 0.18, Counter: 0.32, Synergy: 0.23, Deny: 0.09, Flex: 0.01, Feasibility: 0.17},
	PhaseBan:   {Meta: 0.20, Counter: 0.26, Synergy: 0.04, Deny: 0.34, Flex: 0.02, Feasibility: 0.14},
}

// phaseForAction maps (action type, picks already made by the acting side)
// to a phase: picks #1-2 are early, #3-4 mid, #5 late.
func phaseForAction(action ActionType, picksMade int) Phase {
	if action == ActionBan {
		return PhaseBan
	}
	switch {
	case picksMade <= 1:
		return PhaseEarly
	case picksMade <= 3:
		return PhaseMid
	default:
		return PhaseLate
	}
}
