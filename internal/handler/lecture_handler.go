package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timetabl/positano/internal/catalog"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/repository"
	"github.com/timetabl/positano/internal/response"
	"github.com/timetabl/positano/internal/service"
	"github.com/timetabl/positano/internal/validator"
)

// MaxConflictLectures bounds one conflict check request.
const MaxConflictLectures = 64

// LectureReader is what the lecture endpoints need from the service layer.
type LectureReader interface {
	List(ctx context.Context, univ model.University, sem model.Semester) ([]catalog.View, error)
	Get(ctx context.Context, key model.Key) (*catalog.View, error)
	Calendar(ctx context.Context, w io.Writer, keys ...model.Key) error
	Conflicts(ctx context.Context, keys []model.Key) ([]service.ConflictPair, error)
}

type LectureHandler struct {
	lectures LectureReader
}

func NewLectureHandler(lectures LectureReader) *LectureHandler {
	return &LectureHandler{lectures: lectures}
}

type listLecturesQuery struct {
	University string `form:"univ" json:"univ" binding:"required"`
	Semester   string `form:"semester" json:"semester" binding:"required"`
	Page       int    `form:"page" json:"page" binding:"omitempty,min=1"`
	PerPage    int    `form:"per_page" json:"per_page" binding:"omitempty,min=1,max=500"`
}

type lectureURI struct {
	University string `uri:"univ" json:"univ" binding:"required"`
	Semester   string `uri:"semester" json:"semester" binding:"required"`
	SectionID  string `uri:"litid" json:"litid" binding:"required"`
}

type conflictsRequest struct {
	University string   `json:"univ" binding:"required"`
	Semester   string   `json:"semester" binding:"required"`
	SectionIDs []string `json:"litids" binding:"required,min=1,dive,required"`
}

// ListLectures godoc
// GET /api/v1/lectures?univ=&semester=
func (h *LectureHandler) ListLectures(c *gin.Context) {
	var q listLecturesQuery
	if err := validator.BindQuery(c, &q); err != nil {
		response.FailRequest(c, err)
		return
	}
	univ, sem, err := parseCatalog(q.University, q.Semester)
	if err != nil {
		response.FailRequest(c, err)
		return
	}
	if _, err := catalog.AdapterFor(univ, sem); errors.Is(err, catalog.ErrNoAdapter) {
		response.Fail(c, http.StatusNotFound, response.ErrCatalogUnsupport)
		return
	}

	views, err := h.lectures.List(c.Request.Context(), univ, sem)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if q.PerPage == 0 {
		response.Success(c, http.StatusOK, views)
		return
	}
	page, pagination := response.Paginate(views, q.Page, q.PerPage)
	response.SuccessWithPagination(c, http.StatusOK, page, pagination)
}

// GetLecture godoc
// GET /api/v1/lectures/:univ/:semester/:litid
func (h *LectureHandler) GetLecture(c *gin.Context) {
	key, ok := bindKey(c)
	if !ok {
		return
	}
	view, err := h.lectures.Get(c.Request.Context(), key)
	if err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetLectureCalendar godoc
// GET /api/v1/lectures/:univ/:semester/:litid/calendar.ics
func (h *LectureHandler) GetLectureCalendar(c *gin.Context) {
	key, ok := bindKey(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.lectures.Calendar(c.Request.Context(), &buf, key); err != nil {
		failLookup(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+key.SectionID+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// CheckConflicts godoc
// POST /api/v1/conflicts
func (h *LectureHandler) CheckConflicts(c *gin.Context) {
	var req conflictsRequest
	if err := validator.Bind(c, &req); err != nil {
		response.FailRequest(c, err)
		return
	}
	if len(req.SectionIDs) > MaxConflictLectures {
		response.Fail(c, http.StatusBadRequest, response.ErrTooManyLectures)
		return
	}
	univ, sem, err := parseCatalog(req.University, req.Semester)
	if err != nil {
		response.FailRequest(c, err)
		return
	}

	keys := make([]model.Key, 0, len(req.SectionIDs))
	for _, id := range req.SectionIDs {
		keys = append(keys, model.Key{University: univ, Semester: sem, SectionID: id})
	}
	pairs, err := h.lectures.Conflicts(c.Request.Context(), keys)
	if err != nil {
		failLookup(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"conflicts": pairs})
}

func bindKey(c *gin.Context) (model.Key, bool) {
	var uri lectureURI
	if err := validator.BindURI(c, &uri); err != nil {
		response.FailRequest(c, err)
		return model.Key{}, false
	}
	univ, sem, err := parseCatalog(uri.University, uri.Semester)
	if err != nil {
		response.FailRequest(c, err)
		return model.Key{}, false
	}
	return model.Key{University: univ, Semester: sem, SectionID: uri.SectionID}, true
}

// parseCatalog resolves the university and semester every endpoint is
// scoped to. Failures are reported under the request's own field names.
func parseCatalog(univText, semText string) (model.University, model.Semester, error) {
	univ, univErr := model.ParseUniversity(univText)
	sem, semErr := model.ParseSemester(semText)
	if err := errors.Join(asField("univ", univErr), asField("semester", semErr)); err != nil {
		return 0, model.Semester{}, err
	}
	return univ, sem, nil
}

// asField renames the field of a model validation error.
func asField(name string, err error) error {
	var re *model.RangeError
	if errors.As(err, &re) {
		return &model.RangeError{Field: name, Value: re.Value}
	}
	var ae *model.ArgumentError
	if errors.As(err, &ae) {
		return &model.ArgumentError{Field: name, Value: ae.Value}
	}
	return err
}

func failLookup(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrLectureNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
