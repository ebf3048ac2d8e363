package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/timetabl/positano/internal/catalog"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/repository"
	"github.com/timetabl/positano/internal/response"
	"github.com/timetabl/positano/internal/service"
	"github.com/timetabl/positano/internal/validator"
)

type fakeReader struct {
	views     []catalog.View
	lastKeys  []model.Key
	conflicts []service.ConflictPair
}

func (f *fakeReader) List(_ context.Context, univ model.University, sem model.Semester) ([]catalog.View, error) {
	return f.views, nil
}

func (f *fakeReader) Get(_ context.Context, key model.Key) (*catalog.View, error) {
	for i := range f.views {
		if f.views[i].SectionID == key.SectionID {
			return &f.views[i], nil
		}
	}
	return nil, repository.ErrLectureNotFound
}

func (f *fakeReader) Calendar(_ context.Context, w io.Writer, keys ...model.Key) error {
	f.lastKeys = keys
	_, err := io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return err
}

func (f *fakeReader) Conflicts(_ context.Context, keys []model.Key) ([]service.ConflictPair, error) {
	f.lastKeys = keys
	return f.conflicts, nil
}

func newTestRouter(reader LectureReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.Setup()
	r := gin.New()
	h := NewLectureHandler(reader)
	r.GET("/lectures", h.ListLectures)
	r.GET("/lectures/:univ/:semester/:litid", h.GetLecture)
	r.GET("/lectures/:univ/:semester/:litid/calendar.ics", h.GetLectureCalendar)
	r.POST("/conflicts", h.CheckConflicts)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func sampleViews() []catalog.View {
	return []catalog.View{
		{University: "sogang", Semester: "2015-1", SectionID: "CSE1001-01", Title: "A"},
		{University: "sogang", Semester: "2015-1", SectionID: "CSE1002-01", Title: "B"},
		{University: "sogang", Semester: "2015-1", SectionID: "CSE1003-01", Title: "C"},
	}
}

func TestListLectures(t *testing.T) {
	r := newTestRouter(&fakeReader{views: sampleViews()})

	w := serve(r, http.MethodGet, "/lectures?univ=sogang&semester=20151", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if items, ok := resp.Data.([]interface{}); !ok || len(items) != 3 {
		t.Fatalf("unexpected data: %#v", resp.Data)
	}
}

func TestListLectures_Paginated(t *testing.T) {
	r := newTestRouter(&fakeReader{views: sampleViews()})

	w := serve(r, http.MethodGet, "/lectures?univ=sogang&semester=2015-1&page=2&per_page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	items, ok := resp.Data.([]interface{})
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected data: %#v", resp.Data)
	}
	if resp.Pagination == nil || resp.Pagination.TotalItems != 3 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}

func TestListLectures_Validation(t *testing.T) {
	r := newTestRouter(&fakeReader{})

	tests := []struct {
		name   string
		target string
		status int
		code   response.ErrCode
		field  string
	}{
		{"missing params", "/lectures", http.StatusBadRequest, response.ErrValidation, "univ"},
		{"unknown university", "/lectures?univ=kaist&semester=20151", http.StatusBadRequest, response.ErrValidation, "univ"},
		{"semester out of range", "/lectures?univ=sogang&semester=20201", http.StatusBadRequest, response.ErrOutOfRange, "semester"},
		{"page not a number", "/lectures?univ=sogang&semester=20151&page=x", http.StatusBadRequest, response.ErrInvalidPayload, ""},
		{"no catalog", "/lectures?univ=hongik&semester=20151", http.StatusNotFound, response.ErrCatalogUnsupport, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.target, "")
			if w.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", w.Code, tt.status, w.Body.String())
			}
			resp := decode(t, w)
			if resp.Error == nil {
				t.Fatal("expected error body")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", resp.Error.Code, tt.code)
			}
			if tt.field != "" && resp.Error.Fields[tt.field] == "" {
				t.Errorf("expected field %q in %v", tt.field, resp.Error.Fields)
			}
		})
	}
}

func TestGetLecture(t *testing.T) {
	r := newTestRouter(&fakeReader{views: sampleViews()})

	w := serve(r, http.MethodGet, "/lectures/sogang/20151/CSE1002-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	data, _ := decode(t, w).Data.(map[string]interface{})
	if data["title"] != "B" {
		t.Fatalf("unexpected data: %#v", data)
	}

	w = serve(r, http.MethodGet, "/lectures/sogang/20151/NOPE-01", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if resp := decode(t, w); resp.Error == nil || resp.Error.Code != response.ErrNotFound {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
}

func TestGetLectureCalendar(t *testing.T) {
	reader := &fakeReader{views: sampleViews()}
	r := newTestRouter(reader)

	w := serve(r, http.MethodGet, "/lectures/ewha/2015-2/12345-01/calendar.ics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("content type %q", ct)
	}
	if len(reader.lastKeys) != 1 || reader.lastKeys[0].University != model.Ewha || reader.lastKeys[0].SectionID != "12345-01" {
		t.Fatalf("unexpected keys: %v", reader.lastKeys)
	}
}

func TestCheckConflicts(t *testing.T) {
	reader := &fakeReader{conflicts: []service.ConflictPair{{A: "CSE1001-01", B: "CSE1002-01"}}}
	r := newTestRouter(reader)

	w := serve(r, http.MethodPost, "/conflicts",
		`{"univ":"sogang","semester":"20151","litids":["CSE1001-01","CSE1002-01"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if len(reader.lastKeys) != 2 || reader.lastKeys[1].SectionID != "CSE1002-01" {
		t.Fatalf("unexpected keys: %v", reader.lastKeys)
	}
	data, _ := decode(t, w).Data.(map[string]interface{})
	if pairs, ok := data["conflicts"].([]interface{}); !ok || len(pairs) != 1 {
		t.Fatalf("unexpected data: %#v", data)
	}

	w = serve(r, http.MethodPost, "/conflicts", `{"univ":"sogang","semester":"20151","litids":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty list: status %d", w.Code)
	}
	if fields := decode(t, w).Error.Fields; fields["litids"] == "" {
		t.Fatalf("expected litids field error, got %v", fields)
	}
}

func TestCheckConflicts_RejectedBodies(t *testing.T) {
	r := newTestRouter(&fakeReader{})

	tests := []struct {
		name   string
		body   string
		code   response.ErrCode
		fields []string
	}{
		{"truncated json", `{"univ":"sogang",`, response.ErrInvalidPayload, []string{"detail"}},
		{"wrong type", `{"univ":"sogang","semester":"20151","litids":"CSE1001-01"}`, response.ErrInvalidPayload, []string{"detail"}},
		{"both catalog fields bad", `{"univ":"kaist","semester":"20071","litids":["X"]}`, response.ErrValidation, []string{"univ", "semester"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/conflicts", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", w.Code, w.Body.String())
			}
			resp := decode(t, w)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Fatalf("error = %+v, want code %s", resp.Error, tt.code)
			}
			for _, f := range tt.fields {
				if resp.Error.Fields[f] == "" {
					t.Errorf("missing field %q in %v", f, resp.Error.Fields)
				}
			}
		})
	}
}
