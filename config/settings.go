package config

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var SettingsObj *Settings

type Settings struct {
	DBPath        string
	EvaluationURL string
	SubmissionCSV string
	SharedSecret  string
	Port          string
}

// LoadConfig reads an optional .env file, then the process environment.
// Every option has a default, so a bare environment still starts.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Debugln("No .env file found, using process environment only")
	}

	config := Settings{
		DBPath:        getEnv("DB_PATH", "../data/deploy.db"),
		EvaluationURL: getEnv("EVALUATION_URL", "http://localhost:4000/evaluation/notify"),
		SubmissionCSV: getEnv("SUBMISSION_CSV", "./submission.csv"),
		SharedSecret:  getEnv("SHARED_SECRET", "replace_me"),
		Port:          getEnv("PORT", "4000"),
	}

	log.Debugln("Loaded settings: ", config.DBPath, config.EvaluationURL, config.SubmissionCSV)

	SettingsObj = &config
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
