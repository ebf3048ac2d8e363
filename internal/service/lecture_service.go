package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/calendar"
	"github.com/timetabl/positano/internal/catalog"
	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
)

// LectureStore is the read side of the lecture repository.
type LectureStore interface {
	List(ctx context.Context, univ model.University, sem model.Semester) ([]*model.Lecture, error)
	Get(ctx context.Context, key model.Key) (*model.Lecture, error)
}

// ConflictPair names two overlapping lectures by section id.
type ConflictPair struct {
	A string `json:"a"`
	B string `json:"b"`
}

type LectureService struct {
	repo  LectureStore
	lists cache.Store
	log   zerolog.Logger
}

// NewLectureService creates a LectureService. A nil lists store disables
// list caching.
func NewLectureService(repo LectureStore, lists cache.Store, log zerolog.Logger) *LectureService {
	return &LectureService{
		repo:  repo,
		lists: lists,
		log:   log.With().Str("component", "lecture_service").Logger(),
	}
}

// List returns the views of a semester's lectures, read through the list
// cache.
func (s *LectureService) List(ctx context.Context, univ model.University, sem model.Semester) ([]catalog.View, error) {
	load := func(ctx context.Context) ([]catalog.View, error) {
		lectures, err := s.repo.List(ctx, univ, sem)
		if err != nil {
			return nil, err
		}
		return catalog.Views(lectures), nil
	}
	if s.lists == nil {
		return load(ctx)
	}

	key := config.CacheKey.LectureListKey(univ.String(), sem.Code())
	views, err := cache.TryJSON(ctx, s.lists, key, load)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("failed to list lectures")
		return nil, err
	}
	return views, nil
}

// Get returns one lecture's view.
func (s *LectureService) Get(ctx context.Context, key model.Key) (*catalog.View, error) {
	l, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	v := catalog.NewView(l)
	return &v, nil
}

// Calendar writes the iCalendar export of the lectures identified by keys.
func (s *LectureService) Calendar(ctx context.Context, w io.Writer, keys ...model.Key) error {
	lectures, err := s.fetch(ctx, keys)
	if err != nil {
		return err
	}
	if len(lectures) == 0 {
		return calendar.Export(w, nil, calendar.Term{Weeks: calendar.DefaultWeeks})
	}
	return calendar.Export(w, lectures, calendar.DefaultTerm(lectures[0].Semester()))
}

// Conflicts returns every overlapping pair among the lectures identified
// by keys.
func (s *LectureService) Conflicts(ctx context.Context, keys []model.Key) ([]ConflictPair, error) {
	lectures, err := s.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}
	found := schedule.FindConflicts(lectures)
	out := make([]ConflictPair, 0, len(found))
	for _, c := range found {
		out = append(out, ConflictPair{A: c.A.SectionID, B: c.B.SectionID})
	}
	return out, nil
}

func (s *LectureService) fetch(ctx context.Context, keys []model.Key) ([]*model.Lecture, error) {
	out := make([]*model.Lecture, 0, len(keys))
	for _, k := range keys {
		l, err := s.repo.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
