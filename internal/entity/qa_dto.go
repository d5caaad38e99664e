package entity

// RunRequest is the body of POST /hackrx/run
type RunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// RunResponse holds one answer per question, in question order
type RunResponse struct {
	Answers []string `json:"answers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Model   string `json:"model"`
}
