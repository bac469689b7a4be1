package engine

import (
	"math"
	"slices"
	"sort"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

const neutralMidpoint = 50.0

// Components are the six raw sub-scores, each independently clamped to
// [0,100]. None of them looks at opponent responses; that belongs to the
// lookahead alone.
type Components struct {
	Meta        float64 `json:"meta"`
	Counter     float64 `json:"counter"`
	Synergy     float64 `json:"synergy"`
	Deny        float64 `json:"deny"`
	Flex        float64 `json:"flex"`
	Feasibility float64 `json:"feasibility"`
}

func (c Components) blend(w WeightVector) float64 {
	return w.Meta*c.Meta +
		w.Counter*c.Counter +
		w.Synergy*c.Synergy +
		w.Deny*c.Deny +
		w.Flex*c.Flex +
		w.Feasibility*c.Feasibility
}

// candidateEval is one scored candidate before composition into the public
// response.
type candidateEval struct {
	Hero             string
	Components       Components
	Phase            Phase
	BaseScore        float64 // single-ply weighted blend
	Score            float64 // after the lookahead penalty, if any
	LookaheadPenalty float64
	PredictedRoles   []string
}

// evalCandidate scores one legal hero for the acting side at the given
// action type.
func (e *Engine) evalCandidate(snap *pool.Snapshot, st DraftState, side Side, action ActionType, hero string) candidateEval {
	profile := snap.Profiles[hero]
	taken := st.taken()

	cur := e.assignmentForSide(snap, st.Picks[side], taken)
	withHero := append(slices.Clone(st.Picks[side]), hero)
	takenNext := st.taken()
	takenNext[hero] = true
	next := e.assignmentForSide(snap, withHero, takenNext)

	comps := Components{
		Meta:        profile.MetaScore,
		Counter:     counterScore(profile, st.Picks[side.Opponent()]),
		Synergy:     synergyScore(profile, st.Picks[side]),
		Deny:        denyScore(profile, st.Picks[side]),
		Flex:        flexScore(snap, profile),
		Feasibility: feasibilityComponent(next),
	}

	phase := phaseForAction(action, len(st.Picks[side]))
	base := clamp100(comps.blend(PhaseWeights[phase]))

	return candidateEval{
		Hero:           hero,
		Components:     comps,
		Phase:          phase,
		BaseScore:      round(base, 6),
		Score:          round(base, 6),
		PredictedRoles: predictedRoles(snap, profile, cur.OpenRoles),
	}
}

// counterScore aggregates the candidate's pairwise advantage over every
// enemy pick, averaged. Neutral midpoint when the enemy has no picks.
func counterScore(p *pool.HeroProfile, enemyPicks []string) float64 {
	if len(enemyPicks) == 0 {
		return neutralMidpoint
	}
	total := 0.0
	for _, e := range enemyPicks {
		total += (p.StrongAgainst[e] - p.CounteredBy[e]) * 100.0
	}
	return clamp100(neutralMidpoint + (total/float64(len(enemyPicks)))*0.60)
}

// synergyScore aggregates the candidate's recorded pair strength with every
// ally pick. Neutral midpoint when the side has no picks.
func synergyScore(p *pool.HeroProfile, allyPicks []string) float64 {
	if len(allyPicks) == 0 {
		return neutralMidpoint
	}
	total := 0.0
	for _, a := range allyPicks {
		total += p.SynergyWith[a] * 100.0
	}
	return clamp100(neutralMidpoint + (total/float64(len(allyPicks)))*0.60)
}

// denyScore is the candidate's value to the opponent: taking it removes a
// threat against our own picks. With no picks on the board yet, denial falls
// back to a share of raw meta strength.
func denyScore(p *pool.HeroProfile, ownPicks []string) float64 {
	if len(ownPicks) == 0 {
		return clamp100(0.65 * p.MetaScore)
	}
	threat := 0.0
	for _, mine := range ownPicks {
		threat += p.StrongAgainst[mine] * 100.0
	}
	return clamp100(threat / float64(len(ownPicks)))
}

// flexScore is proportional to the viable-role count. Its decay over the
// draft lives in the phase weight vectors, not here.
func flexScore(snap *pool.Snapshot, p *pool.HeroProfile) float64 {
	return clamp100(float64(len(p.PossibleRoles)-1) / float64(len(snap.Roles)-1) * 100.0)
}

// feasibilityComponent is the side's coverage confidence after
// hypothetically adding the candidate. A dead-end addition scores zero.
func feasibilityComponent(next RoleAssignment) float64 {
	if !next.IsFeasible {
		return 0.0
	}
	return clamp100(next.FeasibilityScore * 100.0)
}

// predictedRoles intersects the hero's possible roles with the acting
// side's currently open roles, strongest coefficient first, capped so the
// hint never reads like a double assignment. Falls back to the full viable
// set when nothing is open for it.
func predictedRoles(snap *pool.Snapshot, p *pool.HeroProfile, openRoles []string) []string {
	roles := make([]string, 0, len(p.PossibleRoles))
	for _, r := range p.PossibleRoles {
		if slices.Contains(openRoles, r) {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = slices.Clone(p.PossibleRoles)
	}
	sort.Slice(roles, func(i, j int) bool {
		pi, pj := p.RolePower[roles[i]], p.RolePower[roles[j]]
		if pi != pj {
			return pi > pj
		}
		return slices.Index(snap.Roles, roles[i]) < slices.Index(snap.Roles, roles[j])
	})
	const maxHints = 3
	if len(roles) > maxHints {
		roles = roles[:maxHints]
	}
	return roles
}

func clamp100(x float64) float64 {
	return max(0.0, min(100.0, x))
}

func round(x float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(x*pow) / pow
}
