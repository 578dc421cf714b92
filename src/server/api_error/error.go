package api_error

// JSONAPIError keeps the error under "error" so clients can read the message directly
type JSONAPIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
