// Package response defines the JSON envelope shared by the admin panel and
// the public gallery endpoints. The panel's frontend switches on the status
// field, so every handler replies with one of these two shapes.
package response

// Response wraps a successful reply. Data carries the payload (gallery
// lists, app entries, session state); Message is used for acknowledgements
// with no payload, such as logout or a completed import.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse carries the machine-readable error code the panel maps to a
// user notice, plus a human-readable detail line.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

// MessageResponse acknowledges a mutation that returns no payload.
func MessageResponse(msg string) Response {
	return Response{
		Status:  "success",
		Message: msg,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}
