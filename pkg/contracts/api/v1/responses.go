package api

// Response wraps successful JSON payloads
type Response[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	// Warnings lists sections that could not be computed for the window
	Warnings []string `json:"warnings,omitempty"`
}

// NewResponse wraps data in a success envelope
func NewResponse[T any](data T, warnings ...string) Response[T] {
	return Response[T]{Success: true, Data: data, Warnings: warnings}
}
