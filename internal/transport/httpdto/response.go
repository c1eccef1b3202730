package httpdto

// Envelope codes used by the service routes and middleware. The four
// facebrain routes answer with their own bodies instead.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnhealthy   = "UNHEALTHY"
	CodeInternal    = "INTERNAL_ERROR"
)

type Response[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{Success: false, Error: err, Code: code}
}

// WithRequestID tags the envelope so a client report can be matched to server logs.
func (r Response[T]) WithRequestID(id string) Response[T] {
	r.RequestID = id
	return r
}
