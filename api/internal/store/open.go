package store

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"math-solver/api/internal/config"
)

// Open builds the history store selected by HISTORY_BACKEND.
// Missing or unusable credentials disable the store; only a configured Firestore
// credentials file that cannot be used is returned as an error.
func Open(ctx context.Context, cfg *config.Config) (Optional, error) {
	switch cfg.HistoryBackend {
	case "none", "off", "":
		return Disabled("history disabled by HISTORY_BACKEND"), nil

	case "firestore", "firebase":
		return openFirestore(ctx, cfg.Firebase)

	case "postgres":
		if cfg.DatabaseURL == "" {
			return disabled("postgres", "DATABASE_URL / POSTGRES_* not set"), nil
		}
		s, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return disabled("postgres", err.Error()), nil
		}
		log.WithFields(log.Fields{"backend": "postgres", "dsn": config.SafeDSNSummary(cfg.DatabaseURL)}).Info("history store connected")
		return Enabled(s), nil

	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return disabled("sqlite", err.Error()), nil
		}
		log.WithFields(log.Fields{"backend": "sqlite", "path": cfg.SQLitePath}).Info("history store opened")
		return Enabled(s), nil

	default:
		return Optional{}, fmt.Errorf("unknown HISTORY_BACKEND %q", cfg.HistoryBackend)
	}
}

func openFirestore(ctx context.Context, fb config.Firebase) (Optional, error) {
	switch fb.Source {
	case config.CredentialsFile:
		projectID := fb.ProjectID
		if projectID == "" {
			id, err := fb.ProjectIDFromFile()
			if err != nil {
				return Optional{}, fmt.Errorf("firebase credentials file %s: %w", fb.CredentialsFile, err)
			}
			projectID = id
		}
		s, err := OpenFirestore(ctx, projectID, option.WithCredentialsFile(fb.CredentialsFile))
		if err != nil {
			return Optional{}, err
		}
		log.WithFields(log.Fields{"backend": "firestore", "credentials": "file", "project": projectID}).Info("history store connected")
		return Enabled(s), nil

	case config.CredentialsEnv:
		js, err := fb.CredentialsJSON()
		if err != nil {
			return disabled("firestore", err.Error()), nil
		}
		s, err := OpenFirestore(ctx, fb.ProjectID, option.WithCredentialsJSON(js))
		if err != nil {
			return disabled("firestore", err.Error()), nil
		}
		log.WithFields(log.Fields{"backend": "firestore", "credentials": "env", "project": fb.ProjectID}).Info("history store connected")
		return Enabled(s), nil

	default:
		return disabled("firestore", "missing env: "+strings.Join(fb.MissingVars, ", ")), nil
	}
}

func disabled(backend, reason string) Optional {
	log.WithFields(log.Fields{
		"backend": backend,
		"reason":  reason,
		"event":   "history_disabled",
	}).Warn("history store disabled; solved problems will not be saved")
	return Disabled(backend + ": " + reason)
}
