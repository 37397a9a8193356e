package core

import (
	"context"
	"testing"

	"trackcore/pkg/domain"
)

func evaluateRule(t *testing.T, rule domain.Rule, product domain.EventProduct) domain.Result {
	t.Helper()
	res, err := rule.Evaluate(context.Background(), product)
	if err != nil {
		t.Fatalf("evaluate %s: %v", rule.Name(), err)
	}
	return res
}

func TestGenealogyIntegrityRuleCleanProduct(t *testing.T) {
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 1, ParentID: 0, Daughters: []int{2}},
		{TrackID: 2, ParentID: 1},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations: %v", res.Violations)
	}
}

func TestGenealogyIntegrityRuleDuplicateID(t *testing.T) {
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 1}, {TrackID: 1},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if !res.HasBlocking() {
		t.Fatalf("duplicate track id must block")
	}
}

func TestGenealogyIntegrityRuleSelfParent(t *testing.T) {
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 3, ParentID: 3},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if !res.HasBlocking() {
		t.Fatalf("self-parent must block")
	}
}

func TestGenealogyIntegrityRuleMissingParentWarns(t *testing.T) {
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 5, ParentID: 2},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if res.HasBlocking() {
		t.Fatalf("missing parent should warn, not block: %v", res.Violations)
	}
	if len(res.Violations) != 1 || res.Violations[0].Severity != domain.SeverityWarn {
		t.Fatalf("violations = %v", res.Violations)
	}
}

func TestGenealogyIntegrityRuleMismatchedDaughter(t *testing.T) {
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 1, Daughters: []int{3}},
		{TrackID: 2},
		{TrackID: 3, ParentID: 2},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if !res.HasBlocking() {
		t.Fatalf("daughter pointing at a different mother must block")
	}
}

func TestGenealogyIntegrityRuleArchivedDaughterSkipped(t *testing.T) {
	// Daughter 7 was archived: linked but never emitted.
	product := domain.EventProduct{Particles: []domain.Particle{
		{TrackID: 1, Daughters: []int{7}},
	}}
	res := evaluateRule(t, GenealogyIntegrityRule(), product)
	if len(res.Violations) != 0 {
		t.Fatalf("archived daughter should not violate: %v", res.Violations)
	}
}

func TestTrajectoryOrderRule(t *testing.T) {
	ordered := domain.Particle{TrackID: 1, Trajectory: []domain.TrajectoryPoint{
		{Position: domain.FourVector{T: 0}},
		{Position: domain.FourVector{T: 1}},
		{Position: domain.FourVector{T: 1}}, // equal times allowed
	}}
	res := evaluateRule(t, TrajectoryOrderRule(), domain.EventProduct{Particles: []domain.Particle{ordered}})
	if len(res.Violations) != 0 {
		t.Fatalf("ordered trajectory flagged: %v", res.Violations)
	}

	scrambled := domain.Particle{TrackID: 2, Trajectory: []domain.TrajectoryPoint{
		{Position: domain.FourVector{T: 5}},
		{Position: domain.FourVector{T: 1}},
		{Position: domain.FourVector{T: 0}},
	}}
	res = evaluateRule(t, TrajectoryOrderRule(), domain.EventProduct{Particles: []domain.Particle{scrambled}})
	if len(res.Violations) != 1 {
		t.Fatalf("want one violation per particle, got %v", res.Violations)
	}
	if res.Violations[0].Severity != domain.SeverityWarn || res.Violations[0].TrackID != 2 {
		t.Fatalf("violation = %+v", res.Violations[0])
	}
}

func TestDefaultRulesEngineAcceptsRecorderOutput(t *testing.T) {
	r := NewRecorder(DefaultConfig())
	product := runSimpleEvent(t, r, []domain.TruthRecord{{Label: "gen"}})

	res, err := DefaultRulesEngine().Evaluate(context.Background(), product)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if res.HasBlocking() {
		t.Fatalf("recorder output rejected: %v", res.Violations)
	}
}
