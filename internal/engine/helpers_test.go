package engine

import (
	"testing"

	"github.com/draftlab/mlbb-draft-backend/internal/pool"
)

// testPoolJSON is a small but representative pool: jungle-only picks to
// force assignments, flex heroes, a ban magnet, and matchup data.
const testPoolJSON = `{
  "version": "test-1",
  "source": "fixture",
  "roles": ["exp_lane", "jungle", "mid_lane", "gold_lane", "roam"],
  "heroes": {
    "suyou": {
      "possibleRoles": ["exp_lane", "jungle"],
      "rolePower": {"exp_lane": 0.86, "jungle": 0.77},
      "tags": ["assassin"],
      "meta": {"tier": "S", "pickCount": 40, "banCount": 22, "pickWinCount": 24},
      "strongAgainst": {"joy": 0.42, "kagura": 0.30},
      "counteredBy": {"franco": 0.25}
    },
    "joy": {
      "possibleRoles": ["jungle"],
      "rolePower": {"jungle": 0.80},
      "tags": ["assassin"],
      "meta": {"tier": "A", "pickCount": 30, "banCount": 12, "pickWinCount": 16},
      "strongAgainst": {"lylia": 0.35},
      "counteredBy": {"suyou": 0.42}
    },
    "ling": {
      "possibleRoles": ["jungle"],
      "rolePower": {"jungle": 0.90},
      "tags": ["assassin"],
      "meta": {"tier": "SS", "pickCount": 45, "banCount": 38, "pickWinCount": 27},
      "counteredBy": {"franco": 0.30}
    },
    "fanny": {
      "possibleRoles": ["jungle", "exp_lane"],
      "rolePower": {"jungle": 0.92, "exp_lane": 0.60},
      "tags": ["assassin"],
      "meta": {"tier": "SS", "pickCount": 20, "banCount": 55, "pickWinCount": 13},
      "strongAgainst": {"miya": 0.50, "yve": 0.38},
      "synergyWith": {"angela": 0.55}
    },
    "chou": {
      "possibleRoles": ["exp_lane", "roam"],
      "rolePower": {"exp_lane": 0.80, "roam": 0.70},
      "tags": ["fighter"],
      "meta": {"tier": "A", "pickCount": 35, "banCount": 10, "pickWinCount": 19},
      "strongAgainst": {"fanny": 0.33},
      "counteredBy": {"fanny": 0.60}
    },
    "franco": {
      "possibleRoles": ["roam"],
      "rolePower": {"roam": 0.75},
      "tags": ["tank"],
      "meta": {"tier": "B", "pickCount": 18, "banCount": 2, "pickWinCount": 9},
      "strongAgainst": {"suyou": 0.25, "ling": 0.30}
    },
    "angela": {
      "possibleRoles": ["roam"],
      "rolePower": {"roam": 0.80},
      "tags": ["support"],
      "meta": {"tier": "A", "pickCount": 25, "banCount": 14, "pickWinCount": 14},
      "synergyWith": {"fanny": 0.55, "claude": 0.40}
    },
    "kagura": {
      "possibleRoles": ["mid_lane"],
      "rolePower": {"mid_lane": 0.85},
      "tags": ["mage"],
      "meta": {"tier": "S", "pickCount": 33, "banCount": 16, "pickWinCount": 19},
      "counteredBy": {"suyou": 0.30}
    },
    "lylia": {
      "possibleRoles": ["mid_lane"],
      "rolePower": {"mid_lane": 0.80},
      "tags": ["mage"],
      "meta": {"tier": "A", "pickCount": 28, "banCount": 6, "pickWinCount": 15},
      "counteredBy": {"joy": 0.35}
    },
    "yve": {
      "possibleRoles": ["mid_lane"],
      "rolePower": {"mid_lane": 0.78},
      "tags": ["mage"],
      "meta": {"tier": "B", "pickCount": 15, "banCount": 3, "pickWinCount": 7},
      "counteredBy": {"fanny": 0.38}
    },
    "claude": {
      "possibleRoles": ["gold_lane"],
      "rolePower": {"gold_lane": 0.85},
      "tags": ["marksman"],
      "meta": {"tier": "S", "pickCount": 36, "banCount": 11, "pickWinCount": 21},
      "synergyWith": {"angela": 0.40}
    },
    "wanwan": {
      "possibleRoles": ["gold_lane"],
      "rolePower": {"gold_lane": 0.82},
      "tags": ["marksman"],
      "meta": {"tier": "S", "pickCount": 31, "banCount": 20, "pickWinCount": 18},
      "strongAgainst": {"franco": 0.28}
    },
    "miya": {
      "possibleRoles": ["gold_lane"],
      "rolePower": {"gold_lane": 0.70},
      "tags": ["marksman"],
      "meta": {"tier": "C", "pickCount": 8, "banCount": 0, "pickWinCount": 3},
      "counteredBy": {"fanny": 0.50}
    }
  }
}`

func testSnapshot(t *testing.T) *pool.Snapshot {
	t.Helper()
	snap, err := pool.Parse([]byte(testPoolJSON), nil)
	if err != nil {
		t.Fatalf("fixture pool failed to load: %v", err)
	}
	return snap
}

func testEngine() *Engine {
	return New(nil)
}

// stateAt returns an empty draft positioned at a given sequence index.
func stateAt(turnIndex int) DraftState {
	st := NewDraftState()
	st.TurnIndex = turnIndex
	return st
}

// firstStepOf finds the first sequence index matching the action/side pair.
func firstStepOf(t *testing.T, action ActionType, side Side) int {
	t.Helper()
	for i, step := range StandardSequence {
		if step.Type == action && step.Side == side {
			return i
		}
	}
	t.Fatalf("no %s step for %s in sequence", action, side)
	return -1
}

func assertInRange(t *testing.T, name string, v, lo, hi float64) {
	t.Helper()
	if v < lo || v > hi {
		t.Fatalf("%s = %v, want within [%v, %v]", name, v, lo, hi)
	}
}

func componentList(c Components) []struct {
	Name  string
	Value float64
} {
	return []struct {
		Name  string
		Value float64
	}{
		{"meta", c.Meta},
		{"counter", c.Counter},
		{"synergy", c.Synergy},
		{"deny", c.Deny},
		{"flex", c.Flex},
		{"feasibility", c.Feasibility},
	}
}
