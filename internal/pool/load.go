package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// document is the on-disk pool schema. The same schema is stored as a jsonb
// payload by the Postgres source.
type document struct {
	Version string                  `json:"version"`
	Source  string                  `json:"source"`
	Roles   []string                `json:"roles"`
	Heroes  map[string]documentHero `json:"heroes"`
}

type documentHero struct {
	PossibleRoles []string           `json:"possibleRoles"`
	RolePower     map[string]float64 `json:"rolePower"`
	Tags          []string           `json:"tags"`
	Meta          MetaStats          `json:"meta"`
	StrongAgainst map[string]float64 `json:"strongAgainst"`
	CounteredBy   map[string]float64 `json:"counteredBy"`
	SynergyWith   map[string]float64 `json:"synergyWith"`
}

// overridesDocument patches individual heroes on top of the base pool. Only
// the fields present in a patch are replaced.
type overridesDocument struct {
	Heroes map[string]overridePatch `json:"heroes"`
}

type overridePatch struct {
	PossibleRoles []string           `json:"possibleRoles"`
	RolePower     map[string]float64 `json:"rolePower"`
	Tags          []string           `json:"tags"`
}

// Load reads the pool file, applies the optional overrides file when
// overridesPath is non-empty, validates the result, and builds derived
// scores. Any invariant violation wraps ErrDataIntegrity.
func Load(path, overridesPath string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}
	var overrides []byte
	if overridesPath != "" {
		overrides, err = os.ReadFile(overridesPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read overrides file: %w", err)
			}
			overrides = nil
		}
	}
	return Parse(raw, overrides)
}

// Parse builds a validated snapshot from a raw pool document and optional
// raw overrides document.
func Parse(raw, overrides []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, integrityErr("pool document is not valid JSON: %v", err)
	}
	snap, warnings := fromDocument(&doc)
	if overrides != nil {
		var od overridesDocument
		if err := json.Unmarshal(overrides, &od); err != nil {
			return nil, integrityErr("overrides document is not valid JSON: %v", err)
		}
		warnings = append(warnings, applyOverrides(snap, &od)...)
		snap.Source = snap.Source + "+overrides"
	}
	snap.Warnings = warnings
	if err := snap.validate(); err != nil {
		return nil, err
	}
	snap.buildDerived()
	return snap, nil
}

func fromDocument(doc *document) (*Snapshot, []string) {
	var warnings []string
	snap := &Snapshot{
		Version:  strings.TrimSpace(doc.Version),
		Source:   strings.TrimSpace(doc.Source),
		Roles:    normalizeRoles(doc.Roles),
		Profiles: make(map[string]*HeroProfile, len(doc.Heroes)),
	}
	if snap.Source == "" {
		snap.Source = "unknown"
	}
	for name, cfg := range doc.Heroes {
		id := NormalizeHeroID(name)
		if id == "" {
			warnings = append(warnings, "empty hero key skipped")
			continue
		}
		if _, dup := snap.Profiles[id]; dup {
			warnings = append(warnings, fmt.Sprintf("duplicate hero key after normalization: %q", id))
			continue
		}
		snap.Profiles[id] = &HeroProfile{
			Hero:          id,
			PossibleRoles: slices.Clone(cfg.PossibleRoles),
			RolePower:     cloneMap(cfg.RolePower),
			Tags:          normalizeTags(cfg.Tags),
			Meta:          cfg.Meta,
			StrongAgainst: normalizeMatchups(cfg.StrongAgainst),
			CounteredBy:   normalizeMatchups(cfg.CounteredBy),
			SynergyWith:   normalizeMatchups(cfg.SynergyWith),
		}
	}
	return snap, warnings
}

// applyOverrides patches heroes in place. A patch replacing possibleRoles
// must come with (or already have) a rolePower entry for every new role;
// validate catches the mismatch afterwards, so patches stay dumb here.
func applyOverrides(snap *Snapshot, od *overridesDocument) []string {
	var warnings []string
	for name, patch := range od.Heroes {
		id := NormalizeHeroID(name)
		if id == "" {
			warnings = append(warnings, "override with empty hero key skipped")
			continue
		}
		p, ok := snap.Profiles[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("override for unknown hero %q skipped", id))
			continue
		}
		if patch.PossibleRoles != nil {
			p.PossibleRoles = slices.Clone(patch.PossibleRoles)
			for r := range p.RolePower {
				if !slices.Contains(p.PossibleRoles, r) {
					delete(p.RolePower, r)
				}
			}
		}
		for r, v := range patch.RolePower {
			if p.RolePower == nil {
				p.RolePower = map[string]float64{}
			}
			p.RolePower[r] = v
		}
		if patch.Tags != nil {
			p.Tags = normalizeTags(patch.Tags)
		}
	}
	return warnings
}

func normalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func normalizeMatchups(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		id := NormalizeHeroID(k)
		if id == "" {
			continue
		}
		if cur, ok := out[id]; !ok || v > cur {
			out[id] = v
		}
	}
	return out
}

func cloneMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
