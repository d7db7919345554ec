package config

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// CredentialSource tells how Firestore credentials were supplied.
type CredentialSource int

const (
	CredentialsMissing CredentialSource = iota
	CredentialsEnv
	CredentialsFile
)

func (s CredentialSource) String() string {
	switch s {
	case CredentialsEnv:
		return "env"
	case CredentialsFile:
		return "file"
	default:
		return "missing"
	}
}

// Firebase holds the service account settings for the history store.
type Firebase struct {
	Source          CredentialSource
	ProjectID       string
	CredentialsFile string
	MissingVars     []string

	serviceAccount map[string]string
}

var requiredFirebaseVars = []string{"FIREBASE_PROJECT_ID", "FIREBASE_PRIVATE_KEY", "FIREBASE_CLIENT_EMAIL"}

func loadFirebase() Firebase {
	fb := Firebase{ProjectID: getEnv("FIREBASE_PROJECT_ID", "")}

	// a credential file wins over loose env vars
	if p := getEnv("FIREBASE_CREDENTIALS_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")); p != "" {
		fb.Source = CredentialsFile
		fb.CredentialsFile = p
		return fb
	}

	for _, k := range requiredFirebaseVars {
		if strings.TrimSpace(os.Getenv(k)) == "" {
			fb.MissingVars = append(fb.MissingVars, k)
		}
	}
	if len(fb.MissingVars) > 0 {
		return fb
	}

	fb.Source = CredentialsEnv
	fb.serviceAccount = map[string]string{
		"type":                        getEnv("FIREBASE_TYPE", "service_account"),
		"project_id":                  fb.ProjectID,
		"private_key_id":              getEnv("FIREBASE_PRIVATE_KEY_ID", ""),
		"private_key":                 strings.ReplaceAll(os.Getenv("FIREBASE_PRIVATE_KEY"), `\n`, "\n"),
		"client_email":                getEnv("FIREBASE_CLIENT_EMAIL", ""),
		"client_id":                   getEnv("FIREBASE_CLIENT_ID", ""),
		"auth_uri":                    getEnv("FIREBASE_AUTH_URI", "https://accounts.google.com/o/oauth2/auth"),
		"token_uri":                   getEnv("FIREBASE_TOKEN_URI", "https://oauth2.googleapis.com/token"),
		"auth_provider_x509_cert_url": getEnv("FIREBASE_AUTH_PROVIDER_X509_CERT_URL", "https://www.googleapis.com/oauth2/v1/certs"),
		"client_x509_cert_url":        getEnv("FIREBASE_CLIENT_X509_CERT_URL", ""),
	}
	return fb
}

// CredentialsJSON renders the env-sourced service account as JSON.
func (f Firebase) CredentialsJSON() ([]byte, error) {
	if f.Source != CredentialsEnv {
		return nil, errors.New("firebase credentials are not sourced from env")
	}
	return json.Marshal(f.serviceAccount)
}

// ProjectIDFromFile reads project_id out of a service account file.
func (f Firebase) ProjectIDFromFile() (string, error) {
	b, err := os.ReadFile(f.CredentialsFile)
	if err != nil {
		return "", err
	}
	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(b, &sa); err != nil {
		return "", err
	}
	if sa.ProjectID == "" {
		return "", errors.New("project_id missing in credentials file")
	}
	return sa.ProjectID, nil
}
