package response

// Envelope is the uniform JSON body for every API response. Status mirrors
// the HTTP outcome ("success" or "error") so clients can branch without
// inspecting transport details.
type Envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}
