package sheets

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
)

// Credentials is the subset of a Google service-account key file the
// integration needs for validation and operator reporting.
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	AuthURI      string `json:"auth_uri"`
	TokenURI     string `json:"token_uri"`
}

// requiredCredentialFields in the order they are reported when missing.
var requiredCredentialFields = []string{
	"type", "project_id", "private_key_id", "private_key",
	"client_email", "client_id", "auth_uri", "token_uri",
}

// ValidateCredentialsFile parses the service-account key file and checks
// that every required field is present. The returned Credentials carry the
// client email and project id for the operator report.
func ValidateCredentialsFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrCredentials, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Credentials{}, fmt.Errorf("%w: not valid json: %v", ErrCredentials, err)
	}
	for _, f := range requiredCredentialFields {
		v, ok := fields[f]
		if !ok {
			return Credentials{}, fmt.Errorf("%w: missing field %q", ErrCredentials, f)
		}
		if s, isString := v.(string); isString && s == "" {
			return Credentials{}, fmt.Errorf("%w: empty field %q", ErrCredentials, f)
		}
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrCredentials, err)
	}
	if creds.Type != "service_account" {
		return Credentials{}, fmt.Errorf("%w: type %q is not service_account", ErrCredentials, creds.Type)
	}
	return creds, nil
}

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	bareIDPattern        = regexp.MustCompile(`^[a-zA-Z0-9-_]{20,}$`)
)

// SpreadsheetIDFromURL extracts the document id from a Google Sheets URL.
// A bare id is accepted as-is.
func SpreadsheetIDFromURL(url string) (string, error) {
	if m := spreadsheetIDPattern.FindStringSubmatch(url); m != nil {
		return m[1], nil
	}
	if bareIDPattern.MatchString(url) {
		return url, nil
	}
	return "", fmt.Errorf("%w: %q", ErrSpreadsheetURL, url)
}
