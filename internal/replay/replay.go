// Package replay drives a recorder from a JSON-lines capture of engine
// callbacks, persisting each finalized event and optionally exporting it.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"trackcore/internal/core"
	"trackcore/internal/export"
	"trackcore/pkg/domain"
)

// Entry types, one per engine callback.
const (
	EntryBeginEvent = "begin_event"
	EntryTrack      = "track"
	EntryStep       = "step"
	EntryTrackEnd   = "track_end"
	EntryEndEvent   = "end_event"
)

// Entry is one line of a capture file. Type selects which field group is
// meaningful; unused groups stay at their zero values.
type Entry struct {
	Type string `json:"type"`

	// begin_event / end_event
	EventID int                  `json:"event_id,omitempty"`
	Truths  []domain.TruthRecord `json:"truths,omitempty"`

	// track / track_end
	TrackID       int            `json:"track_id,omitempty"`
	ParentID      int            `json:"parent_id,omitempty"`
	PDGCode       int            `json:"pdg_code,omitempty"`
	Primary       bool           `json:"primary,omitempty"`
	TruthIndex    int            `json:"truth_index,omitempty"`
	Process       string         `json:"process,omitempty"`
	KineticEnergy float64        `json:"kinetic_energy_mev,omitempty"`
	Mass          float64        `json:"mass_mev,omitempty"`
	Polarization  domain.Vector3 `json:"polarization,omitempty"`
	Weight        float64        `json:"weight,omitempty"`
	FinalProcess  string         `json:"final_process,omitempty"`

	// step
	PrePosition     domain.Vector3 `json:"pre_position_mm,omitempty"`
	PostPosition    domain.Vector3 `json:"post_position_mm,omitempty"`
	PreMomentum     domain.Vector3 `json:"pre_momentum_mev,omitempty"`
	PostMomentum    domain.Vector3 `json:"post_momentum_mev,omitempty"`
	PreTime         float64        `json:"pre_time_ns,omitempty"`
	PostTime        float64        `json:"post_time_ns,omitempty"`
	PreTotalEnergy  float64        `json:"pre_total_energy_mev,omitempty"`
	PostTotalEnergy float64        `json:"post_total_energy_mev,omitempty"`
	StepLength      float64        `json:"step_length_mm,omitempty"`
	TrackVelocity   float64        `json:"track_velocity_mm_ns,omitempty"`
	ZeroRestMass    bool           `json:"zero_rest_mass,omitempty"`
}

func (e Entry) trackSnapshot() core.TrackSnapshot {
	origin := core.SecondaryOrigin(e.Process)
	if e.Primary {
		origin = core.PrimaryOrigin(e.TruthIndex)
	}
	return core.TrackSnapshot{
		TrackID:       e.TrackID,
		ParentID:      e.ParentID,
		PDGCode:       e.PDGCode,
		Origin:        origin,
		KineticEnergy: e.KineticEnergy,
		Mass:          e.Mass,
		Polarization:  e.Polarization,
		Weight:        e.Weight,
		FinalProcess:  e.FinalProcess,
	}
}

func (e Entry) stepSnapshot() core.StepSnapshot {
	return core.StepSnapshot{
		PrePosition:     e.PrePosition,
		PostPosition:    e.PostPosition,
		PreMomentum:     e.PreMomentum,
		PostMomentum:    e.PostMomentum,
		PreTime:         e.PreTime,
		PostTime:        e.PostTime,
		PreTotalEnergy:  e.PreTotalEnergy,
		PostTotalEnergy: e.PostTotalEnergy,
		Process:         e.Process,
		StepLength:      e.StepLength,
		TrackVelocity:   e.TrackVelocity,
		ZeroRestMass:    e.ZeroRestMass,
	}
}

// Player replays capture entries through a recorder and saves the finalized
// event products. Exporter is optional.
type Player struct {
	recorder *core.Recorder
	store    domain.EventStore
	exporter *export.Exporter
	log      *zap.Logger
	runID    string
}

// NewPlayer assembles a replay pipeline for one run.
func NewPlayer(runID string, rec *core.Recorder, store domain.EventStore, exporter *export.Exporter, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{recorder: rec, store: store, exporter: exporter, log: log, runID: runID}
}

// Summary reports what a replay produced.
type Summary struct {
	Events    int
	Particles int
	Rejected  int
}

// Play consumes the capture stream until EOF. Events rejected by blocking
// rules are counted and skipped; malformed input aborts the replay.
func (p *Player) Play(ctx context.Context, r io.Reader) (Summary, error) {
	var sum Summary
	var eventID int
	inEvent := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return sum, fmt.Errorf("line %d: decode entry: %w", line, err)
		}
		switch entry.Type {
		case EntryBeginEvent:
			eventID = entry.EventID
			inEvent = true
			p.recorder.BeginEvent()
		case EntryTrack:
			if !inEvent {
				return sum, fmt.Errorf("line %d: track outside event", line)
			}
			if err := p.recorder.EnterTrack(entry.trackSnapshot()); err != nil {
				return sum, fmt.Errorf("line %d: enter track %d: %w", line, entry.TrackID, err)
			}
		case EntryStep:
			if !inEvent {
				return sum, fmt.Errorf("line %d: step outside event", line)
			}
			p.recorder.Step(entry.stepSnapshot())
		case EntryTrackEnd:
			if !inEvent {
				return sum, fmt.Errorf("line %d: track_end outside event", line)
			}
			p.recorder.ExitTrack(entry.trackSnapshot())
		case EntryEndEvent:
			if !inEvent {
				return sum, fmt.Errorf("line %d: end_event outside event", line)
			}
			inEvent = false
			product := p.recorder.EndEvent(entry.Truths)
			if err := p.saveEvent(ctx, eventID, product, &sum); err != nil {
				return sum, err
			}
		default:
			return sum, fmt.Errorf("line %d: unknown entry type %q", line, entry.Type)
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read capture: %w", err)
	}
	if inEvent {
		return sum, fmt.Errorf("capture truncated: event %d never finalized", eventID)
	}
	return sum, nil
}

func (p *Player) saveEvent(ctx context.Context, eventID int, product domain.EventProduct, sum *Summary) error {
	rec := domain.EventRecord{RunID: p.runID, EventID: eventID, Product: product}
	res, err := p.store.SaveEvent(ctx, rec)
	if err != nil {
		var ruleErr domain.RuleViolationError
		if errors.As(err, &ruleErr) {
			sum.Rejected++
			p.log.Warn("event rejected by rules",
				zap.Int("event_id", eventID),
				zap.Int("violations", len(ruleErr.Result.Violations)))
			return nil
		}
		return fmt.Errorf("save event %d: %w", eventID, err)
	}
	for _, v := range res.Violations {
		p.log.Info("rule violation recorded",
			zap.Int("event_id", eventID),
			zap.String("rule", v.Rule),
			zap.String("severity", string(v.Severity)),
			zap.String("message", v.Message))
	}
	sum.Events++
	sum.Particles += len(product.Particles)
	if p.exporter != nil {
		if _, err := p.exporter.ExportEvent(ctx, rec); err != nil {
			return fmt.Errorf("export event %d: %w", eventID, err)
		}
	}
	return nil
}
