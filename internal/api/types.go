package api

import "github.com/satriahrh/cat-translator/domain/entities"

// TranslationResponse is the body returned by the translation endpoint
type TranslationResponse struct {
	Translation string `json:"translation"`
}

// HealthResponse is the body returned by the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// RecordingsResponse lists recording history entries
type RecordingsResponse struct {
	Recordings []*entities.RecordingRecord `json:"recordings"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
