// Package session ties one trainee, one plant instance, and one scenario
// together for the lifetime of a training run.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/plant-ots/control"
	"github.com/signalsfoundry/plant-ots/core"
	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
	"github.com/signalsfoundry/plant-ots/scoring"
)

const tracerName = "github.com/signalsfoundry/plant-ots/session"

// Event is one entry in the session's chronological event log.
type Event struct {
	Turn     int            `json:"turn"`
	Time     time.Time      `json:"time"`
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// TurnRecord captures one completed turn for the session history.
type TurnRecord struct {
	Turn    int               `json:"turn"`
	Result  core.TurnResult   `json:"result"`
	Score   scoring.TurnScore `json:"score"`
	Advisor string            `json:"advisor,omitempty"`
}

// Session is one training run: a plant at its nominal state, a scenario's
// disturbances, a turn counter, the event log, and the running score.
// Sessions are not safe for concurrent use; the Manager serialises access.
type Session struct {
	ID       string         `json:"id"`
	Scenario model.Scenario `json:"scenario"`
	Started  time.Time      `json:"started"`

	plant        *core.Plant
	orchestrator *core.TurnOrchestrator
	scorer       *scoring.Scorer
	tracker      *scoring.Tracker
	log          logging.Logger

	turn        int
	events      []Event
	history     []TurnRecord
	lastApplied model.TagMap
}

// ErrSessionOver is returned once the plant has tripped; the trainee must
// start a new session (or Reset) to continue.
var ErrSessionOver = errors.New("session ended by emergency shutdown")

// New starts a session for a scenario. The plant config must match the
// scenario's plant type; recorder may be nil.
func New(cfg *model.PlantConfig, scenario model.Scenario, log logging.Logger, recorder core.TurnRecorder) (*Session, error) {
	if log == nil {
		log = logging.Noop()
	}
	if scenario.Plant != cfg.Type {
		return nil, errors.New("scenario does not match plant type")
	}

	plant, err := core.NewPlant(cfg, log)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log = log.With(logging.String("session_id", id), logging.String("scenario", scenario.Name))

	return &Session{
		ID:           id,
		Scenario:     scenario,
		Started:      time.Now(),
		plant:        plant,
		orchestrator: core.NewTurnOrchestrator(plant, log, recorder),
		scorer:       scoring.NewScorer(cfg),
		tracker:      scoring.NewTracker(),
		log:          log,
		lastApplied:  nominalSetpoints(cfg),
	}, nil
}

// nominalSetpoints seeds the first turn's hold values from the nominal PVs.
func nominalSetpoints(cfg *model.PlantConfig) model.TagMap {
	sp := make(model.TagMap, len(cfg.Actuators))
	for _, a := range cfg.Actuators {
		sp[a.Setpoint] = cfg.Nominal[a.PV]
	}
	return sp
}

// State returns a copy of the current committed plant state.
func (s *Session) State() model.TagMap { return s.plant.State() }

// Turn returns the number of committed turns so far.
func (s *Session) Turn() int { return s.turn }

// Over reports whether the session has ended in an emergency shutdown.
func (s *Session) Over() bool { return s.plant.Tripped() }

// Events returns the chronological event log.
func (s *Session) Events() []Event { return append([]Event(nil), s.events...) }

// History returns the per-turn records committed so far.
func (s *Session) History() []TurnRecord { return append([]TurnRecord(nil), s.history...) }

// Score returns the running session summary.
func (s *Session) Score() scoring.Summary { return s.tracker.Summary() }

// ExecuteTurn advances the session by one turn with the trainee's requested
// setpoints. Once the plant has tripped every further call returns
// ErrSessionOver.
func (s *Session) ExecuteTurn(ctx context.Context, requested model.TagMap) (TurnRecord, error) {
	return s.executeTurn(ctx, requested, "")
}

// ExecuteControllerTurn lets an advisory controller drive the turn. A
// controller failure is not fatal: the previous turn's setpoints are held and
// the turn proceeds, with the fallback noted in the event log.
func (s *Session) ExecuteControllerTurn(ctx context.Context, ctl control.Controller) (TurnRecord, error) {
	requested, err := ctl.Suggest(ctx, s.plant.State())
	advisor := ctl.Name()
	if err != nil {
		s.log.Warn(ctx, "controller failed; holding setpoints",
			logging.String("controller", advisor),
			logging.String("error", err.Error()))
		s.addEvent(model.SeverityAction, "controller "+advisor+" failed; holding previous setpoints")
		requested = s.lastApplied.Clone()
	}
	return s.executeTurn(ctx, requested, advisor)
}

func (s *Session) executeTurn(ctx context.Context, requested model.TagMap, advisor string) (TurnRecord, error) {
	if s.plant.Tripped() {
		return TurnRecord{}, ErrSessionOver
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "session.turn",
		trace.WithAttributes(
			attribute.String("session.id", s.ID),
			attribute.Int("session.turn", s.turn+1),
		))
	defer span.End()

	res, err := s.orchestrator.ExecuteTurn(ctx, requested, s.Scenario.Params)
	if err != nil {
		span.RecordError(err)
		return TurnRecord{}, err
	}

	s.turn++
	s.lastApplied = res.Applied.Clone()
	s.recordEvents(res.Safety)

	score := s.scorer.ScoreTurn(res.State, res.Safety)
	s.tracker.Record(score, res.Safety)

	rec := TurnRecord{Turn: s.turn, Result: res, Score: score, Advisor: advisor}
	s.history = append(s.history, rec)
	span.SetAttributes(
		attribute.String("turn.outcome", res.Outcome),
		attribute.Float64("turn.score", score.Total),
	)
	return rec, nil
}

func (s *Session) recordEvents(safety model.SafetyResult) {
	if safety.ESDTriggered {
		s.addEvent(model.SeverityESD, safety.ESDReason)
		return
	}
	if safety.InterlockActive {
		s.addEvent(model.SeverityInterlock, safety.InterlockReason)
	}
	for _, a := range safety.Alarms {
		s.addEvent(model.SeverityAlarm, a)
	}
}

func (s *Session) addEvent(sev model.Severity, msg string) {
	s.events = append(s.events, Event{
		Turn:     s.turn,
		Time:     time.Now(),
		Severity: sev,
		Message:  msg,
	})
}

// Reset returns the plant to its nominal state and clears the trip latch,
// keeping the event log and score history for the debrief.
func (s *Session) Reset() {
	s.plant.Reset()
	s.lastApplied = nominalSetpoints(s.plant.Config())
	s.addEvent(model.SeverityAction, "plant reset to nominal state")
}
