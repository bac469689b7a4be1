// Package pool loads and serves versioned hero role pool snapshots. A
// snapshot is immutable once built; every request works against the snapshot
// pointer it grabbed at entry, so a hot reload can never tear a request
// across two pool versions.
package pool

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// RoleCount is fixed for the lifetime of a pool version. The full-enumeration
// role optimizer in internal/engine depends on this cap; growing it means
// replacing that optimizer with a general max-weight matching.
const RoleCount = 5

// ErrDataIntegrity marks a pool that violates its declared invariants.
// Integrity failures are fatal at load time; the engine never patches a bad
// pool per request.
var ErrDataIntegrity = errors.New("hero role pool integrity violation")

var tierScore = map[string]float64{
	"SS": 100.0,
	"S":  88.0,
	"A":  74.0,
	"B":  60.0,
	"C":  45.0,
	"D":  30.0,
}

const defaultTierScore = 45.0

// MetaStats carries the per-hero tournament statistics produced by the
// external tier-list pipeline.
type MetaStats struct {
	Tier         string  `json:"tier"`
	PickCount    float64 `json:"pickCount"`
	BanCount     float64 `json:"banCount"`
	PickWinCount float64 `json:"pickWinCount"`
}

// HeroProfile is the read-only per-hero record. RolePower covers exactly the
// PossibleRoles set with values in [0,1]; the loader rejects anything else.
type HeroProfile struct {
	Hero          string             `json:"hero"`
	PossibleRoles []string           `json:"possibleRoles"`
	RolePower     map[string]float64 `json:"rolePower"`
	Tags          []string           `json:"tags"`
	Meta          MetaStats          `json:"meta"`
	StrongAgainst map[string]float64 `json:"strongAgainst,omitempty"`
	CounteredBy   map[string]float64 `json:"counteredBy,omitempty"`
	SynergyWith   map[string]float64 `json:"synergyWith,omitempty"`

	// Derived at snapshot build time.
	TierScore float64 `json:"tierScore"`
	MetaScore float64 `json:"metaScore"`
}

// BestRolePower returns the strongest coefficient across the hero's viable
// roles.
func (p *HeroProfile) BestRolePower() float64 {
	best := 0.0
	for _, v := range p.RolePower {
		if v > best {
			best = v
		}
	}
	return best
}

// Snapshot is one validated, immutable pool version.
type Snapshot struct {
	Version  string
	Source   string
	Roles    []string
	Profiles map[string]*HeroProfile
	Warnings []string

	heroIDs []string
}

// HeroIDs returns every hero id in ascending order. Callers must not mutate
// the returned slice.
func (s *Snapshot) HeroIDs() []string { return s.heroIDs }

// HasRole reports whether role belongs to the snapshot's role domain.
func (s *Snapshot) HasRole(role string) bool { return slices.Contains(s.Roles, role) }

// FlexHeroCount counts heroes viable in more than one role.
func (s *Snapshot) FlexHeroCount() int {
	n := 0
	for _, p := range s.Profiles {
		if len(p.PossibleRoles) > 1 {
			n++
		}
	}
	return n
}

// NormalizeHeroID is the canonical hero id form used across pool data and
// draft requests.
func NormalizeHeroID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func integrityErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

// validate enforces the pool invariants: a version tag, an exact 5-role
// domain, and per hero a non-empty possible-role set whose rolePower map
// covers exactly that set with coefficients in [0,1].
func (s *Snapshot) validate() error {
	if strings.TrimSpace(s.Version) == "" {
		return integrityErr("version is required")
	}
	if len(s.Roles) != RoleCount {
		return integrityErr("role domain must have exactly %d roles, got %d", RoleCount, len(s.Roles))
	}
	seen := map[string]bool{}
	for i, role := range s.Roles {
		if strings.TrimSpace(role) == "" {
			return integrityErr("roles[%d] is empty", i)
		}
		if seen[role] {
			return integrityErr("duplicate role %q", role)
		}
		seen[role] = true
	}
	if len(s.Profiles) == 0 {
		return integrityErr("hero set is empty")
	}
	for id, p := range s.Profiles {
		if err := validateProfile(id, p, s.Roles); err != nil {
			return err
		}
	}
	return nil
}

func validateProfile(id string, p *HeroProfile, roles []string) error {
	if len(p.PossibleRoles) == 0 {
		return integrityErr("hero %q has no possible roles", id)
	}
	poss := map[string]bool{}
	for _, r := range p.PossibleRoles {
		if !slices.Contains(roles, r) {
			return integrityErr("hero %q lists role %q outside the role domain", id, r)
		}
		if poss[r] {
			return integrityErr("hero %q repeats role %q", id, r)
		}
		poss[r] = true
	}
	if len(p.RolePower) != len(p.PossibleRoles) {
		return integrityErr("hero %q rolePower domain does not match possibleRoles", id)
	}
	for r, v := range p.RolePower {
		if !poss[r] {
			return integrityErr("hero %q has rolePower for %q outside possibleRoles", id, r)
		}
		if v < 0 || v > 1 {
			return integrityErr("hero %q rolePower[%s]=%v outside [0,1]", id, r, v)
		}
	}
	return nil
}

// buildDerived fills the per-hero tier and meta scores, normalizing
// pick/ban/win counts against the observed pool maxima, and fixes the sorted
// hero id index. Matchup strengths outside [0,1] are clamped with a warning;
// they feed scoring, not the role invariants.
func (s *Snapshot) buildDerived() {
	var maxPick, maxBan, maxWin float64
	for _, p := range s.Profiles {
		maxPick = max(maxPick, p.Meta.PickCount)
		maxBan = max(maxBan, p.Meta.BanCount)
		maxWin = max(maxWin, p.Meta.PickWinCount)
	}

	s.heroIDs = make([]string, 0, len(s.Profiles))
	for id := range s.Profiles {
		s.heroIDs = append(s.heroIDs, id)
	}
	slices.Sort(s.heroIDs)
	for _, id := range s.heroIDs {
		p := s.Profiles[id]
		ts, ok := tierScore[strings.ToUpper(strings.TrimSpace(p.Meta.Tier))]
		if !ok {
			ts = defaultTierScore
		}
		p.TierScore = ts

		winNorm, pickNorm, banNorm := 0.0, 0.0, 0.0
		if maxWin > 0 {
			winNorm = p.Meta.PickWinCount / maxWin * 100.0
		}
		if maxPick > 0 {
			pickNorm = p.Meta.PickCount / maxPick * 100.0
		}
		if maxBan > 0 {
			banNorm = p.Meta.BanCount / maxBan * 100.0
		}
		p.MetaScore = clamp100(0.42*ts + 0.28*winNorm + 0.12*pickNorm + 0.08*banNorm + 0.10*(p.BestRolePower()*100.0))

		s.clampMatchups(id, "strongAgainst", p.StrongAgainst)
		s.clampMatchups(id, "counteredBy", p.CounteredBy)
		s.clampMatchups(id, "synergyWith", p.SynergyWith)
	}
	sort.Strings(s.Warnings)
}

func (s *Snapshot) clampMatchups(hero, field string, m map[string]float64) {
	for opp, v := range m {
		if v < 0 || v > 1 {
			s.Warnings = append(s.Warnings,
				fmt.Sprintf("hero %q %s[%s]=%v clamped to [0,1]", hero, field, opp, v))
			m[opp] = max(0.0, min(1.0, v))
		}
	}
}

func clamp100(x float64) float64 {
	return max(0.0, min(100.0, x))
}
