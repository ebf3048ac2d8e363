package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/repository"
	"github.com/timetabl/positano/internal/timecodec"
)

type memoryStore struct {
	lectures  map[model.Key]*model.Lecture
	listCalls int
}

func (m *memoryStore) List(_ context.Context, univ model.University, sem model.Semester) ([]*model.Lecture, error) {
	m.listCalls++
	var out []*model.Lecture
	for k, l := range m.lectures {
		if k.University == univ && k.Semester == sem {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(_ context.Context, key model.Key) (*model.Lecture, error) {
	l, ok := m.lectures[key]
	if !ok {
		return nil, repository.ErrLectureNotFound
	}
	return l, nil
}

func newStore(t *testing.T, lectures ...*model.Lecture) *memoryStore {
	t.Helper()
	m := &memoryStore{lectures: make(map[model.Key]*model.Lecture)}
	for _, l := range lectures {
		m.lectures[l.Key()] = l
	}
	return m
}

func lectureAt(t *testing.T, litid string, day, start int) *model.Lecture {
	t.Helper()
	sem, err := model.NewSemester(2015, 1)
	if err != nil {
		t.Fatal(err)
	}
	ls, err := model.NewLesson(timecodec.Lookup(model.Sogang), day, start, 75, "R101")
	if err != nil {
		t.Fatal(err)
	}
	l, err := model.NewLecture(model.Key{University: model.Sogang, Semester: sem, SectionID: litid}, model.LectureDraft{
		Title:   "강의 " + litid,
		Domain:  "전공",
		Credits: 3,
		Lessons: []model.Lesson{ls},
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLectureService_ListIsCached(t *testing.T) {
	ctx := context.Background()
	a := lectureAt(t, "CSE1001-01", 1, 540)
	repo := newStore(t, a)
	lists, err := cache.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := NewLectureService(repo, lists, zerolog.New(io.Discard))

	for i := 0; i < 2; i++ {
		views, err := svc.List(ctx, model.Sogang, a.Semester())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(views) != 1 || views[0].SectionID != "CSE1001-01" || views[0].TimeText != "월1" {
			t.Fatalf("unexpected views: %+v", views)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("repository hit %d times, want 1", repo.listCalls)
	}
}

func TestLectureService_GetNotFound(t *testing.T) {
	svc := NewLectureService(newStore(t), nil, zerolog.New(io.Discard))
	sem, _ := model.NewSemester(2015, 1)
	_, err := svc.Get(context.Background(), model.Key{University: model.Sogang, Semester: sem, SectionID: "X"})
	if !errors.Is(err, repository.ErrLectureNotFound) {
		t.Fatalf("expected ErrLectureNotFound, got %v", err)
	}
}

func TestLectureService_Conflicts(t *testing.T) {
	a := lectureAt(t, "CSE1001-01", 1, 540)
	b := lectureAt(t, "CSE1002-01", 1, 600)
	c := lectureAt(t, "CSE1003-01", 2, 540)
	svc := NewLectureService(newStore(t, a, b, c), nil, zerolog.New(io.Discard))

	got, err := svc.Conflicts(context.Background(), []model.Key{a.Key(), b.Key(), c.Key()})
	if err != nil {
		t.Fatalf("Conflicts: %v", err)
	}
	if len(got) != 1 || got[0].A != "CSE1001-01" || got[0].B != "CSE1002-01" {
		t.Fatalf("unexpected conflicts: %+v", got)
	}
}

func TestLectureService_Calendar(t *testing.T) {
	a := lectureAt(t, "CSE1001-01", 1, 540)
	svc := NewLectureService(newStore(t, a), nil, zerolog.New(io.Discard))

	var buf bytes.Buffer
	if err := svc.Calendar(context.Background(), &buf, a.Key()); err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "BEGIN:VEVENT") || !strings.Contains(out, "RRULE:FREQ=WEEKLY;COUNT=16") {
		t.Fatalf("unexpected calendar:\n%s", out)
	}
}
