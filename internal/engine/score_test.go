package engine

import (
	"math"
	"testing"
)

func TestCounterScore(t *testing.T) {
	snap := testSnapshot(t)

	if got := counterScore(snap.Profiles["suyou"], nil); got != neutralMidpoint {
		t.Fatalf("no enemy picks: got %v, want neutral %v", got, neutralMidpoint)
	}

	// suyou is strong against joy (0.42) with no reverse edge.
	got := counterScore(snap.Profiles["suyou"], []string{"joy"})
	if want := 50.0 + 0.42*100*0.60; math.Abs(got-want) > 1e-9 {
		t.Fatalf("favorable matchup: got %v, want %v", got, want)
	}

	// joy is countered by suyou: the same edge, mirrored below the midpoint.
	got = counterScore(snap.Profiles["joy"], []string{"suyou"})
	if want := 50.0 - 0.42*100*0.60; math.Abs(got-want) > 1e-9 {
		t.Fatalf("unfavorable matchup: got %v, want %v", got, want)
	}
}

func TestSynergyScore(t *testing.T) {
	snap := testSnapshot(t)

	if got := synergyScore(snap.Profiles["angela"], nil); got != neutralMidpoint {
		t.Fatalf("no ally picks: got %v, want neutral %v", got, neutralMidpoint)
	}

	got := synergyScore(snap.Profiles["angela"], []string{"fanny"})
	if want := 50.0 + 0.55*100*0.60; math.Abs(got-want) > 1e-9 {
		t.Fatalf("recorded pair: got %v, want %v", got, want)
	}

	// No recorded pair reads as neutral, not as a penalty.
	if got := synergyScore(snap.Profiles["franco"], []string{"miya"}); got != neutralMidpoint {
		t.Fatalf("unrecorded pair: got %v, want neutral %v", got, neutralMidpoint)
	}
}

func TestDenyScore(t *testing.T) {
	snap := testSnapshot(t)

	// With no own picks on the board, denial is a share of raw meta strength.
	p := snap.Profiles["ling"]
	if got, want := denyScore(p, nil), clamp100(0.65*p.MetaScore); math.Abs(got-want) > 1e-9 {
		t.Fatalf("empty board fallback: got %v, want %v", got, want)
	}

	// fanny threatens miya at 0.50: banning fanny protects that pick.
	got := denyScore(snap.Profiles["fanny"], []string{"miya"})
	if want := 50.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("threat vs own pick: got %v, want %v", got, want)
	}

	// A hero with no edge against our picks denies nothing.
	if got := denyScore(snap.Profiles["angela"], []string{"miya"}); got != 0 {
		t.Fatalf("no threat: got %v, want 0", got)
	}
}

func TestFlexScore(t *testing.T) {
	snap := testSnapshot(t)

	if got := flexScore(snap, snap.Profiles["franco"]); got != 0 {
		t.Fatalf("single-role hero: got %v, want 0", got)
	}
	if got := flexScore(snap, snap.Profiles["suyou"]); math.Abs(got-25.0) > 1e-9 {
		t.Fatalf("two-role hero: got %v, want 25", got)
	}
}

func TestFeasibilityComponent(t *testing.T) {
	if got := feasibilityComponent(RoleAssignment{IsFeasible: false, FeasibilityScore: 0.8}); got != 0 {
		t.Fatalf("infeasible assignment must score 0, got %v", got)
	}
	if got := feasibilityComponent(RoleAssignment{IsFeasible: true, FeasibilityScore: 0.8}); got != 80.0 {
		t.Fatalf("got %v, want 80", got)
	}
}

func TestPredictedRoles(t *testing.T) {
	snap := testSnapshot(t)
	allRoles := snap.Roles

	// Both viable roles open: strongest coefficient first.
	got := predictedRoles(snap, snap.Profiles["suyou"], allRoles)
	if len(got) != 2 || got[0] != "exp_lane" || got[1] != "jungle" {
		t.Fatalf("open draft: got %v, want [exp_lane jungle]", got)
	}

	// Only jungle open: the intersection narrows the hint.
	got = predictedRoles(snap, snap.Profiles["suyou"], []string{"jungle", "roam"})
	if len(got) != 1 || got[0] != "jungle" {
		t.Fatalf("narrowed draft: got %v, want [jungle]", got)
	}

	// Nothing open for the hero: fall back to its full viable set.
	got = predictedRoles(snap, snap.Profiles["suyou"], []string{"mid_lane"})
	if len(got) != 2 || got[0] != "exp_lane" {
		t.Fatalf("fallback: got %v, want full viable set, exp_lane first", got)
	}
}

func TestPhaseForAction(t *testing.T) {
	cases := []struct {
		action    ActionType
		picksMade int
		want      Phase
	}{
		{ActionBan, 0, PhaseBan},
		{ActionBan, 4, PhaseBan},
		{ActionPick, 0, PhaseEarly},
		{ActionPick, 1, PhaseEarly},
		{ActionPick, 2, PhaseMid},
		{ActionPick, 3, PhaseMid},
		{ActionPick, 4, PhaseLate},
	}
	for _, tc := range cases {
		if got := phaseForAction(tc.action, tc.picksMade); got != tc.want {
			t.Fatalf("phaseForAction(%s, %d) = %s, want %s", tc.action, tc.picksMade, got, tc.want)
		}
	}
}

func TestPhaseWeights_SumToOne(t *testing.T) {
	for phase, w := range PhaseWeights {
		sum := w.Meta + w.Counter + w.Synergy + w.Deny + w.Flex + w.Feasibility
		if math.Abs(sum-1.0) > 1e-9 {
			t.Fatalf("%s weights sum to %v, want 1.0", phase, sum)
		}
	}
}

func TestEvalCandidate_ComponentsStayInRange(t *testing.T) {
	snap := testSnapshot(t)
	eng := testEngine()

	st := stateAt(firstStepOf(t, ActionPick, SideAlly))
	st.Picks[SideEnemy] = []string{"joy"}
	st.Bans[SideAlly] = []string{"ling"}

	for _, hero := range snap.HeroIDs() {
		if st.taken()[hero] {
			continue
		}
		ev := eng.evalCandidate(snap, st, SideAlly, ActionPick, hero)
		for _, c := range componentList(ev.Components) {
			assertInRange(t, hero+" "+c.Name, c.Value, 0, 100)
		}
		assertInRange(t, hero+" base", ev.BaseScore, 0, 100)
		if ev.Phase != PhaseEarly {
			t.Fatalf("%s: phase = %s, want early at zero own picks", hero, ev.Phase)
		}
		if len(ev.PredictedRoles) == 0 || len(ev.PredictedRoles) > 3 {
			t.Fatalf("%s: predicted roles %v, want 1-3 entries", hero, ev.PredictedRoles)
		}
	}
}
