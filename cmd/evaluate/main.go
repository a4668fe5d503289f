package main

import (
	"context"
	"time"

	"challenge-orchestrator/config"
	"challenge-orchestrator/pkgs/helpers"
	"challenge-orchestrator/pkgs/service"
	"challenge-orchestrator/pkgs/store"

	"github.com/google/uuid"
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

	evaluator := service.NewEvaluator(service.NewLicenseVerifier(0), service.NewPageVerifier(0))
	results := evaluator.EvaluateAll(entries)

	// The engine itself stays persistence-free; recording happens here.
	for _, r := range results {
		saveResult(st, r, "license", r.Verdict.LicensePass, r.Verdict.LicenseReason)
		saveResult(st, r, "page", r.Verdict.PagePass, r.Verdict.PageReason)
	}
	log.Infof("Evaluation complete: %d entries", len(results))
}

func saveResult(st *store.Store, r service.EvaluationResult, check string, pass bool, reason string) {
	score := 0.0
	if pass {
		score = 1.0
	}
	err := st.SaveResult(context.Background(), store.Result{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Email:     r.Entry.Email,
		Task:      r.Entry.Task,
		Round:     r.Entry.Round,
		RepoURL:   r.Entry.RepoURL,
		CommitSHA: r.Entry.CommitSHA,
		PagesURL:  r.Entry.PagesURL,
		CheckName: check,
		Score:     score,
		Reason:    reason,
	})
	if err != nil {
		log.Errorf("Failed to record %s result for %s: %v", check, r.Entry.Email, err)
	}
}
