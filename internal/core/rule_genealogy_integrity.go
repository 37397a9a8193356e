package core

import (
	"context"
	"fmt"

	"trackcore/pkg/domain"
)

// GenealogyIntegrityRule checks the structural invariants of a finalized
// event product: track ids are unique, no particle is its own parent, and
// every daughter that was emitted points back at its mother. A parent missing
// from the product is only a warning; orphans are expected when a parent
// fails a cut its daughter passes, and archived daughters legitimately appear
// in daughter lists without being emitted.
func GenealogyIntegrityRule() domain.Rule {
	return genealogyIntegrityRule{}
}

type genealogyIntegrityRule struct{}

func (genealogyIntegrityRule) Name() string { return "genealogy_integrity" }

func (genealogyIntegrityRule) Evaluate(_ context.Context, product domain.EventProduct) (domain.Result, error) {
	res := domain.Result{}

	index := make(map[int]int, len(product.Particles))
	for i, p := range product.Particles {
		if prev, dup := index[p.TrackID]; dup {
			res.Violations = append(res.Violations, genealogyViolation(domain.SeverityBlock, p.TrackID,
				fmt.Sprintf("track %d emitted at positions %d and %d", p.TrackID, prev, i)))
			continue
		}
		index[p.TrackID] = i
	}

	for _, p := range product.Particles {
		if p.ParentID == p.TrackID {
			res.Violations = append(res.Violations, genealogyViolation(domain.SeverityBlock, p.TrackID,
				fmt.Sprintf("track %d lists itself as parent", p.TrackID)))
			continue
		}
		if p.ParentID > 0 {
			if _, ok := index[p.ParentID]; !ok {
				res.Violations = append(res.Violations, genealogyViolation(domain.SeverityWarn, p.TrackID,
					fmt.Sprintf("track %d references parent %d absent from the event", p.TrackID, p.ParentID)))
			}
		}
		for _, d := range p.Daughters {
			di, ok := index[d]
			if !ok {
				// Archived daughter: linked but not emitted.
				continue
			}
			if product.Particles[di].ParentID != p.TrackID {
				res.Violations = append(res.Violations, genealogyViolation(domain.SeverityBlock, p.TrackID,
					fmt.Sprintf("track %d claims daughter %d whose parent is %d", p.TrackID, d, product.Particles[di].ParentID)))
			}
		}
	}

	return res, nil
}

func genealogyViolation(severity domain.Severity, trackID int, message string) domain.Violation {
	return domain.Violation{
		Rule:     "genealogy_integrity",
		Severity: severity,
		Message:  message,
		TrackID:  trackID,
	}
}
