package sheets

import "errors"

var (
	// ErrCredentials marks a service-account key file that is missing or
	// fails validation.
	ErrCredentials = errors.New("invalid service account credentials")
	// ErrSpreadsheetURL marks a URL no spreadsheet id can be extracted from.
	ErrSpreadsheetURL = errors.New("invalid spreadsheet url")
	// ErrAPICall covers failures talking to the Google Sheets API.
	ErrAPICall = errors.New("sheets api call")
)
