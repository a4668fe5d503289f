package main

import (
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

	// An unreadable seed file is fatal before any dispatch starts.
	dests, err := service.LoadDestinationsCSV(config.SettingsObj.SubmissionCSV)
	if err != nil {
		log.Fatalf("Failed to load submission csv: %v", err)
	}

	st, err := store.Open(config.SettingsObj.DBPath)
	if err != nil {
		log.Fatalf("Failed to open roster store: %v", err)
	}
	defer st.Close()

	dispatcher := service.NewDispatcher(service.NewDeliveryClient(0, 0), config.SettingsObj.EvaluationURL)
	dispatcher.Recorder = st

	results := dispatcher.DispatchRound(dests, task.TemplateSumOfSales, 1)

	delivered := 0
	for _, r := range results {
		if r.Outcome.Succeeded {
			delivered++
		}
	}
	log.Infof("Round 1 dispatch complete: %d/%d delivered", delivered, len(results))
}
