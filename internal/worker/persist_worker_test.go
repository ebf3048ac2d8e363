package worker

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/model"
)

type recordingSaver struct {
	calls [][]*model.Lecture
	err   error
}

func (s *recordingSaver) SaveLectures(_ context.Context, lectures []*model.Lecture) error {
	s.calls = append(s.calls, lectures)
	return s.err
}

func record(litid string) model.LectureRecord {
	return model.LectureRecord{
		University: "sogang",
		Semester:   16,
		SectionID:  litid,
		Title:      "자료구조",
		Domain:     "전공",
		Credits:    3,
		Lessons: []model.LessonRecord{
			{Day: 1, Time: 630, Period: 75, Location: "R101"},
		},
	}
}

func TestPersistWorker_FlushSavesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	lists, err := cache.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := config.CacheKey.LectureListKey("sogang", "20151")
	if err := lists.Put(ctx, key, []byte("[]")); err != nil {
		t.Fatal(err)
	}

	saver := &recordingSaver{}
	w := NewPersistWorker(saver, nil, lists, 10, zerolog.New(io.Discard))
	w.flushSafe(ctx, []model.LectureRecord{record("CSE1001-01"), record("CSE1001-02")})

	if len(saver.calls) != 1 || len(saver.calls[0]) != 2 {
		t.Fatalf("expected one batch of 2, got %v", saver.calls)
	}
	if _, err := lists.Get(ctx, key); !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("list cache should be dropped, got %v", err)
	}
}

func TestPersistWorker_DropsInvalidRecords(t *testing.T) {
	bad := record("CSE1001-03")
	bad.Credits = 2.25
	unknown := record("CSE1001-04")
	unknown.University = "kaist"

	saver := &recordingSaver{}
	w := NewPersistWorker(saver, nil, nil, 10, zerolog.New(io.Discard))
	w.flushSafe(context.Background(), []model.LectureRecord{bad, record("CSE1001-01"), unknown})

	if len(saver.calls) != 1 {
		t.Fatalf("expected one save, got %d", len(saver.calls))
	}
	got := saver.calls[0]
	if len(got) != 1 || got[0].SectionID() != "CSE1001-01" {
		t.Fatalf("unexpected batch: %v", got)
	}
}

func TestPersistWorker_EmptyBatchIsNoop(t *testing.T) {
	saver := &recordingSaver{}
	w := NewPersistWorker(saver, nil, nil, 0, zerolog.New(io.Discard))
	w.flushSafe(context.Background(), nil)
	if len(saver.calls) != 0 {
		t.Fatalf("expected no saves, got %d", len(saver.calls))
	}
	if w.batchSize != 1 {
		t.Fatalf("batch size should be clamped to 1, got %d", w.batchSize)
	}
}
