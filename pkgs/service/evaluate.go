package service

import (
	"sync"
	"time"

	"challenge-orchestrator/pkgs/store"

	log "github.com/sirupsen/logrus"
)

// LicenseChecker and PageChecker are the two independent verification
// channels. They are interfaces so tests (and future checks) can swap
// implementations without touching the engine.
type LicenseChecker interface {
	Check(repoURL string) (pass bool, reason string)
}

type PageChecker interface {
	Check(pageURL string) (pass bool, reason string)
}

// Verdict merges the two sub-checks for one roster entry. The
// sub-verdicts are computed independently; a failure in one never
// blocks the other.
type Verdict struct {
	LicensePass   bool
	LicenseReason string
	PagePass      bool
	PageReason    string
}

type EvaluationResult struct {
	Entry   store.RosterEntry
	Verdict Verdict
}

// Evaluator runs both checks over a roster. Workers=1 keeps the
// sequential source behavior; larger values bound fan-out with a
// semaphore so remote hosts are still not hammered.
type Evaluator struct {
	License LicenseChecker
	Page    PageChecker
	Pause   time.Duration
	Workers int
}

func NewEvaluator(license LicenseChecker, page PageChecker) *Evaluator {
	return &Evaluator{
		License: license,
		Page:    page,
		Pause:   time.Second,
		Workers: 1,
	}
}

// Evaluate runs both checks for one entry. An absent repository URL
// short-circuits the license check to a failing "not applicable"
// verdict without touching the network.
func (e *Evaluator) Evaluate(entry store.RosterEntry) Verdict {
	var v Verdict
	if entry.RepoURL == "" {
		v.LicensePass, v.LicenseReason = false, "not applicable"
	} else {
		v.LicensePass, v.LicenseReason = e.License.Check(entry.RepoURL)
	}
	v.PagePass, v.PageReason = e.Page.Check(entry.PagesURL)

	log.Infof("License: %t %s", v.LicensePass, v.LicenseReason)
	log.Infof("Page check: %t %s", v.PagePass, v.PageReason)
	return v
}

// EvaluateAll yields one result per entry, in roster order, continuing
// past individual failures.
func (e *Evaluator) EvaluateAll(entries []store.RosterEntry) []EvaluationResult {
	results := make([]EvaluationResult, len(entries))

	if e.Workers <= 1 {
		for i, entry := range entries {
			log.Infoln("Evaluating ", entry.RepoURL)
			results[i] = EvaluationResult{Entry: entry, Verdict: e.Evaluate(entry)}
			if e.Pause > 0 && i < len(entries)-1 {
				time.Sleep(e.Pause)
			}
		}
		return results
	}

	sem := make(chan struct{}, e.Workers)
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, entry store.RosterEntry) {
			defer wg.Done()
			defer func() { <-sem }()
			log.Infoln("Evaluating ", entry.RepoURL)
			results[i] = EvaluationResult{Entry: entry, Verdict: e.Evaluate(entry)}
		}(i, entry)
	}
	wg.Wait()
	return results
}
