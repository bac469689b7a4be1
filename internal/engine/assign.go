package engine

import (
	"slices"
	"sort"
	"strings"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

// RoleAssignment is the optimizer verdict for one side: the maximum-weight
// role bijection, the roles it leaves open, and whether a full unique-role
// composition is still reachable from the undrafted pool.
type RoleAssignment struct {
	IsFeasible       bool                `json:"isFeasible"`
	BestScore        float64             `json:"bestScore"`
	BestAssignment   map[string]string   `json:"bestAssignment"` // role -> hero
	HeroToRole       map[string]string   `json:"heroToRole"`
	OpenRoles        []string            `json:"openRoles"`
	FeasibilityScore float64             `json:"feasibilityScore"`
	ValidAssignments int                 `json:"validAssignments"`
	MaxAssignments   int                 `json:"maxAssignments"`
	HeroRoleOptions  map[string][]string `json:"heroRoleOptions"`
}

// assignCore is the pool-version-pure part of an assignment, safe to
// memoize: it depends only on the hero set and the pool profiles, never on
// bans or the opponent.
type assignCore struct {
	found            bool
	bestScore        float64
	roleToHero       map[string]string
	heroToRole       map[string]string
	validAssignments int
	maxAssignments   int
	heroRoleOptions  map[string][]string
}

func assignCacheKey(version string, heroes []string) string {
	sorted := slices.Clone(heroes)
	sort.Strings(sorted)
	return version + "|" + strings.Join(sorted, ",")
}

// solveAssignment enumerates every injective role mapping for the hero list
// (≤ 5!/(5-n)! = 120 candidates) and keeps the maximum-weight one.
//
// Tie-break, fixed and iteration-order independent:
//  1. higher total role power,
//  2. higher minimum per-hero role power (no severely mis-slotted hero),
//  3. lexicographically smallest hero sequence in role-domain order.
func (e *Engine) solveAssignment(snap *pool.Snapshot, heroes []string) *assignCore {
	key := assignCacheKey(snap.Version, heroes)
	if cached, ok := e.assignCache.Get(key); ok {
		return cached
	}

	core := &assignCore{
		roleToHero:      map[string]string{},
		heroToRole:      map[string]string{},
		heroRoleOptions: map[string][]string{},
		maxAssignments:  permutations(len(snap.Roles), len(heroes)),
	}
	if len(heroes) == 0 {
		core.found = true
		core.validAssignments = 1
		e.assignCache.Add(key, core)
		return core
	}

	// Most-constrained hero first keeps the search shallow; hero id breaks
	// ordering ties so the traversal itself is deterministic.
	order := slices.Clone(heroes)
	sort.Slice(order, func(i, j int) bool {
		ni := len(snap.Profiles[order[i]].PossibleRoles)
		nj := len(snap.Profiles[order[j]].PossibleRoles)
		if ni != nj {
			return ni < nj
		}
		return order[i] < order[j]
	})

	var (
		chosen    = map[string]string{} // hero -> role
		usedRoles = map[string]bool{}
		options   = map[string]map[string]bool{}
		bestKey   []string
		bestMin   float64
	)
	for _, h := range heroes {
		options[h] = map[string]bool{}
	}

	var dfs func(i int, score float64)
	dfs = func(i int, score float64) {
		if i == len(order) {
			core.validAssignments++
			minPower := 1.0
			for h, r := range chosen {
				minPower = min(minPower, snap.Profiles[h].RolePower[r])
				options[h][r] = true
			}
			key := make([]string, len(snap.Roles))
			for ri, role := range snap.Roles {
				if h, ok := invert(chosen, role); ok {
					key[ri] = h
				}
			}
			better := !core.found ||
				score > core.bestScore ||
				(score == core.bestScore && minPower > bestMin) ||
				(score == core.bestScore && minPower == bestMin && slices.Compare(key, bestKey) < 0)
			if better {
				core.found = true
				core.bestScore = score
				bestMin = minPower
				bestKey = key
				core.heroToRole = cloneStringMap(chosen)
			}
			return
		}
		hero := order[i]
		profile := snap.Profiles[hero]
		for _, role := range snap.Roles {
			if usedRoles[role] || !slices.Contains(profile.PossibleRoles, role) {
				continue
			}
			usedRoles[role] = true
			chosen[hero] = role
			dfs(i+1, score+profile.RolePower[role])
			delete(chosen, hero)
			usedRoles[role] = false
		}
	}
	dfs(0, 0.0)

	for h, role := range core.heroToRole {
		core.roleToHero[role] = h
	}
	for h, set := range options {
		roles := make([]string, 0, len(set))
		for _, r := range snap.Roles {
			if set[r] {
				roles = append(roles, r)
			}
		}
		core.heroRoleOptions[h] = roles
	}
	e.assignCache.Add(key, core)
	return core
}

// assignmentForSide combines the memoized bijection with the draft-global
// feasibility check: a role left open must still be coverable by at least
// one hero that is neither picked nor banned anywhere.
func (e *Engine) assignmentForSide(snap *pool.Snapshot, heroes []string, unavailable map[string]bool) RoleAssignment {
	core := e.solveAssignment(snap, heroes)
	out := RoleAssignment{
		BestAssignment:   map[string]string{},
		HeroToRole:       map[string]string{},
		HeroRoleOptions:  map[string][]string{},
		ValidAssignments: core.validAssignments,
		MaxAssignments:   core.maxAssignments,
	}
	if !core.found {
		out.OpenRoles = slices.Clone(snap.Roles)
		for _, h := range heroes {
			out.HeroRoleOptions[h] = []string{}
		}
		return out
	}

	out.BestScore = round(core.bestScore, 6)
	for r, h := range core.roleToHero {
		out.BestAssignment[r] = h
	}
	for h, r := range core.heroToRole {
		out.HeroToRole[h] = r
	}
	for h, roles := range core.heroRoleOptions {
		out.HeroRoleOptions[h] = slices.Clone(roles)
	}
	for _, role := range snap.Roles {
		if _, covered := core.roleToHero[role]; !covered {
			out.OpenRoles = append(out.OpenRoles, role)
		}
	}

	feasible, score := openRoleFeasibility(snap, out.OpenRoles, unavailable)
	out.IsFeasible = feasible
	out.FeasibilityScore = round(score, 4)
	return out
}

// openRoleFeasibility scores how reachable a full composition remains.
// Each open role contributes min(remainingCoverage/2, 1): redundant coverage
// is rewarded, a single point of failure is penalized, a role nobody left
// can fill kills feasibility outright.
func openRoleFeasibility(snap *pool.Snapshot, openRoles []string, unavailable map[string]bool) (bool, float64) {
	if len(openRoles) == 0 {
		return true, 1.0
	}
	feasible := true
	total := 0.0
	for _, role := range openRoles {
		coverage := 0
		for _, id := range snap.HeroIDs() {
			if unavailable[id] {
				continue
			}
			if slices.Contains(snap.Profiles[id].PossibleRoles, role) {
				coverage++
			}
		}
		if coverage == 0 {
			feasible = false
		}
		total += min(float64(coverage)/2.0, 1.0)
	}
	return feasible, total / float64(len(openRoles))
}

func invert(heroToRole map[string]string, role string) (string, bool) {
	for h, r := range heroToRole {
		if r == role {
			return h, true
		}
	}
	return "", false
}

func permutations(n, r int) int {
	if r < 0 || r > n {
		return 0
	}
	out := 1
	for i := n; i > n-r; i-- {
		out *= i
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
