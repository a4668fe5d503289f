package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/writer"
)

func InitLogger() {
	// Check if LOG_FILE environment variable is set
	logFile := os.Getenv("LOG_FILE")
	if logFile != "" {
		// Ensure log directory exists
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Printf("Failed to create log directory: %v\n", err)
			// Fall back to stdout/stderr
			logFile = ""
		} else {
			// Open log file
			file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				// Fall back to stdout/stderr
				logFile = ""
			} else {
				// Write to both file and stdout/stderr
				log.SetOutput(io.MultiWriter(file, os.Stdout))
			}
		}
	}

	// If no log file or failed to open, use default behavior
	if logFile == "" {
		log.SetOutput(io.Discard) // Send all logs to nowhere by default

		log.AddHook(&writer.Hook{ // Send logs with level higher than warning to stderr
			Writer: os.Stderr,
			LogLevels: []log.Level{
				log.PanicLevel,
				log.FatalLevel,
				log.ErrorLevel,
				log.WarnLevel,
			},
		})
		log.AddHook(&writer.Hook{ // Send info and debug logs to stdout
			Writer: os.Stdout,
			LogLevels: []log.Level{
				log.TraceLevel,
				log.InfoLevel,
				log.DebugLevel,
			},
		})
	}

	log.SetReportCaller(true)

	// LOG_LEVEL takes logrus numeric levels: ERROR(2), INFO(4), DEBUG(5)
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logLevel, err := strconv.ParseUint(lvl, 10, 32)
		if err != nil || logLevel > 6 {
			log.SetLevel(log.InfoLevel)
		} else {
			log.SetLevel(log.Level(logLevel))
		}
	} else {
		log.SetLevel(log.InfoLevel)
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
