package models

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Cause     string `json:"cause,omitempty"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
