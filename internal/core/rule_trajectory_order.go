package core

import (
	"context"
	"fmt"

	"trackcore/pkg/domain"
)

// TrajectoryOrderRule verifies that every emitted trajectory is ordered in
// simulation time. Out-of-order points indicate a mis-sequenced engine or a
// bad time correction; they warn rather than block because the genealogy is
// still usable.
func TrajectoryOrderRule() domain.Rule {
	return trajectoryOrderRule{}
}

type trajectoryOrderRule struct{}

func (trajectoryOrderRule) Name() string { return "trajectory_order" }

func (trajectoryOrderRule) Evaluate(_ context.Context, product domain.EventProduct) (domain.Result, error) {
	res := domain.Result{}
	for _, p := range product.Particles {
		for i := 1; i < len(p.Trajectory); i++ {
			if p.Trajectory[i].Position.T < p.Trajectory[i-1].Position.T {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "trajectory_order",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("track %d trajectory point %d precedes point %d in time", p.TrackID, i, i-1),
					TrackID:  p.TrackID,
				})
				break
			}
		}
	}
	return res, nil
}
