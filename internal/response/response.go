package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every portal API reply.
type Response struct {
	Data       any         `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody carries a stable code, its Thai message, and per-field details.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, perPage, total int) *Pagination {
	p := &Pagination{Page: page, PerPage: perPage, TotalItems: total}
	if perPage > 0 {
		p.TotalPages = (total + perPage - 1) / perPage
	}
	return p
}

// Metadata ties a reply to its request.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// sessionPendingRetry is how long a client should wait before asking again
// while its sign-in handshake completes.
const sessionPendingRetry = "1"

// Success sends data with the given status.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Response{Data: data, Metadata: buildMetadata(c)})
}

// SuccessWithPagination sends one page of a listing.
func SuccessWithPagination(c *gin.Context, statusCode int, data any, pagination *Pagination) {
	c.JSON(statusCode, Response{Data: data, Pagination: pagination, Metadata: buildMetadata(c)})
}

// Fail sends an error with no field details.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	authHeaders(c, statusCode, code)
	c.JSON(statusCode, failure(c, code, nil))
}

// FailWithFields sends a validation error with a message per field.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	authHeaders(c, statusCode, code)
	c.JSON(statusCode, failure(c, code, fields))
}

// AbortFail stops the middleware chain with an error.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	authHeaders(c, statusCode, code)
	c.AbortWithStatusJSON(statusCode, failure(c, code, nil))
}

func failure(c *gin.Context, code ErrCode, fields map[string]string) Response {
	return Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Metadata: buildMetadata(c),
	}
}

// authHeaders marks 401 replies as bearer challenges. A pending session also
// tells the client when to retry instead of sending it to sign in.
func authHeaders(c *gin.Context, statusCode int, code ErrCode) {
	if statusCode != http.StatusUnauthorized {
		return
	}
	c.Header("WWW-Authenticate", `Bearer realm="portal"`)
	if code == ErrSessionPending {
		c.Header("Retry-After", sessionPendingRetry)
	}
}

func buildMetadata(c *gin.Context) Metadata {
	return Metadata{
		RequestID: RequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
