package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/validator"
)

// Response is the envelope every catalog endpoint answers with.
type Response struct {
	Data       interface{} `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination describes one page of a lecture list.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Paginate cuts page (1-based) of perPage items out of items. A page past
// the end yields an empty slice with the totals still filled in.
func Paginate[T any](items []T, page, perPage int) ([]T, *Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = len(items)
	}
	total := len(items)
	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return items[start:end], &Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: pages,
	}
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Data: data, Metadata: buildMetadata(c)})
}

// SuccessWithPagination sends one page of a list together with its totals.
func SuccessWithPagination(c *gin.Context, statusCode int, data interface{}, pagination *Pagination) {
	c.JSON(statusCode, Response{Data: data, Pagination: pagination, Metadata: buildMetadata(c)})
}

// Fail sends an error response carrying only a code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	FailWithFields(c, statusCode, code, nil)
}

// FailWithFields sends an error response with per-field details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Response{
		Error:    &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields},
		Metadata: buildMetadata(c),
	})
}

// FailRequest answers 400 for input the client got wrong: a request that
// did not bind, or values the catalog model refused. Joined errors report
// one field each. Anything else is an internal error.
func FailRequest(c *gin.Context, err error) {
	var be *validator.BindError
	if errors.As(err, &be) {
		code := ErrValidation
		if be.Malformed {
			code = ErrInvalidPayload
		}
		FailWithFields(c, http.StatusBadRequest, code, be.Fields)
		return
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	fields := make(map[string]string, len(errs))
	code := ErrOutOfRange
	for _, e := range errs {
		var re *model.RangeError
		var ae *model.ArgumentError
		switch {
		case errors.As(e, &re):
			fields[re.Field] = re.Error()
		case errors.As(e, &ae):
			fields[ae.Field] = ae.Error()
			code = ErrValidation
		default:
			Fail(c, http.StatusInternalServerError, ErrInternal)
			return
		}
	}
	FailWithFields(c, http.StatusBadRequest, code, fields)
}

func buildMetadata(c *gin.Context) Metadata {
	id := RequestIDOf(c)
	if id == "" {
		id = uuid.New().String()
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
