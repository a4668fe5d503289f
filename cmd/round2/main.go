package main

import (
	"context"

	"challenge-orchestrator/config"
	"challenge-orchestrator/pkgs/helpers"
	"challenge-orchestrator/pkgs/service"
	"challenge-orchestrator/pkgs/store"
	"challenge-orchestrator/pkgs/task"

	log "github.com/sirupsen/logrus"
)

func main() {
	helpers.InitLogger()
	config.LoadConfig()

	st, err := store.Open(config.SettingsObj.DBPath)
	if err != nil {
		log.Fatalf("Failed to open roster store: %v", err)
	}
	defer st.Close()

	entries, err := st.ListRoster(context.Background())
	if err != nil {
		log.Fatalf("Failed to read roster: %v", err)
	}

	// No verdicts are wired in here: the default policy advances every
	// known participant. Swap in RequireBothChecks to gate on an
	// evaluation pass.
	selector := service.NewProgressionSelector(nil)
	results := make([]service.EvaluationResult, len(entries))
	for i, e := range entries {
		results[i] = service.EvaluationResult{Entry: e}
	}
	survivors := selector.Select(results)

	dests := service.DestinationsFromRoster(survivors,
		config.SettingsObj.EvaluationURL, config.SettingsObj.SharedSecret)

	dispatcher := service.NewDispatcher(service.NewDeliveryClient(0, 0), config.SettingsObj.EvaluationURL)
	dispatcher.Recorder = st

	outcomes := dispatcher.DispatchRound(dests, task.TemplateRound2, 2)

	for _, r := range outcomes {
		if r.Outcome.Succeeded {
			if err := st.UpdateRound(context.Background(), r.Destination.Email, 2); err != nil {
				log.Errorf("Failed to update round for %s: %v", r.Destination.Email, err)
			}
		}
	}
	log.Infof("Round 2 dispatch complete: %d targets", len(outcomes))
}
