package http

const (
	HeaderContentType  = "Content-Type"
	HeaderCacheControl = "Cache-Control"
	HeaderConnection   = "Connection"
	HeaderRequestID    = "X-Request-Id"

	ValueApplicationJson = "application/json"
	ValueEventStream     = "text/event-stream"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)
