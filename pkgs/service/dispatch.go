package service

import (
	"context"
	"sync"
	"time"

	"challenge-orchestrator/pkgs/store"
	"challenge-orchestrator/pkgs/task"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Destination is one participant intake endpoint to post a task to.
type Destination struct {
	Endpoint string
	Email    string
	Secret   string
}

type DispatchResult struct {
	Destination Destination
	Outcome     DeliveryOutcome
}

// TaskRecorder persists dispatched tasks so notify callbacks can be
// matched later. The store satisfies it; tests use stubs.
type TaskRecorder interface {
	SaveTask(ctx context.Context, t store.TaskRecord) error
}

// Dispatcher posts one payload per destination, best-effort: a failed
// build or delivery never stops the rest of the batch. Workers=1 is
// the sequential source behavior.
type Dispatcher struct {
	Client        *DeliveryClient
	EvaluationURL string
	Recorder      TaskRecorder
	Pause         time.Duration
	Workers       int
}

func NewDispatcher(client *DeliveryClient, evaluationURL string) *Dispatcher {
	return &Dispatcher{
		Client:        client,
		EvaluationURL: evaluationURL,
		Pause:         time.Second,
		Workers:       1,
	}
}

func (d *Dispatcher) dispatchOne(dest Destination, templateID string, round int) DispatchResult {
	payload, err := task.Build(task.BuildParams{
		TemplateID:    templateID,
		Email:         dest.Email,
		Secret:        dest.Secret,
		Round:         round,
		EvaluationURL: d.EvaluationURL,
	})
	if err != nil {
		log.Errorf("Failed to build payload for %s: %v", dest.Email, err)
		return DispatchResult{Destination: dest, Outcome: DeliveryOutcome{LastError: err.Error()}}
	}

	if d.Recorder != nil {
		record := store.TaskRecord{
			ID:            uuid.NewString(),
			Timestamp:     time.Now().UnixMilli(),
			Email:         payload.Email,
			Task:          payload.Task,
			Round:         payload.Round,
			Nonce:         payload.Nonce,
			Brief:         payload.Brief,
			Checks:        payload.Checks,
			EvaluationURL: payload.EvaluationURL,
			SecretOK:      true,
		}
		if err := d.Recorder.SaveTask(context.Background(), record); err != nil {
			log.Errorf("Failed to record task %s for %s: %v", payload.Task, dest.Email, err)
		}
	}

	outcome := d.Client.Deliver(dest.Endpoint, payload)
	if outcome.HTTPStatus != nil {
		log.Infof("POST %s => %d", dest.Endpoint, *outcome.HTTPStatus)
	} else {
		log.Warnf("POST %s failed after %d attempts: %s", dest.Endpoint, outcome.AttemptsMade, outcome.LastError)
	}
	return DispatchResult{Destination: dest, Outcome: outcome}
}

// DispatchRound posts the round's task to every destination and
// returns one result per destination, in input order.
func (d *Dispatcher) DispatchRound(dests []Destination, templateID string, round int) []DispatchResult {
	results := make([]DispatchResult, len(dests))

	if d.Workers <= 1 {
		for i, dest := range dests {
			results[i] = d.dispatchOne(dest, templateID, round)
			if d.Pause > 0 && i < len(dests)-1 {
				time.Sleep(d.Pause)
			}
		}
		return results
	}

	sem := make(chan struct{}, d.Workers)
	var wg sync.WaitGroup
	for i, dest := range dests {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, dest Destination) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = d.dispatchOne(dest, templateID, round)
		}(i, dest)
	}
	wg.Wait()
	return results
}

// AdvancementPolicy decides from a verdict whether a participant moves
// on to the next round.
type AdvancementPolicy func(Verdict) bool

// AdvanceAll reproduces the source behavior: every known participant
// gets the next round regardless of verdict.
func AdvanceAll(Verdict) bool { return true }

// RequireBothChecks advances only participants that passed both the
// license and the page check.
func RequireBothChecks(v Verdict) bool { return v.LicensePass && v.PagePass }

// ProgressionSelector filters a completed round's results down to the
// entries that advance.
type ProgressionSelector struct {
	Policy AdvancementPolicy
}

func NewProgressionSelector(policy AdvancementPolicy) *ProgressionSelector {
	if policy == nil {
		policy = AdvanceAll
	}
	return &ProgressionSelector{Policy: policy}
}

func (s *ProgressionSelector) Select(results []EvaluationResult) []store.RosterEntry {
	var survivors []store.RosterEntry
	for _, r := range results {
		if s.Policy(r.Verdict) {
			survivors = append(survivors, r.Entry)
		}
	}
	return survivors
}

// DestinationsFromRoster turns roster entries into dispatch targets.
// Entries without a recorded intake endpoint fall back to the
// configured evaluation URL, and entries without a per-participant
// secret get the shared one.
func DestinationsFromRoster(entries []store.RosterEntry, fallbackEndpoint, sharedSecret string) []Destination {
	dests := make([]Destination, 0, len(entries))
	for _, e := range entries {
		endpoint := e.Endpoint
		if endpoint == "" {
			endpoint = fallbackEndpoint
		}
		dests = append(dests, Destination{
			Endpoint: endpoint,
			Email:    e.Email,
			Secret:   sharedSecret,
		})
	}
	return dests
}
