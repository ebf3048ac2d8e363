package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/extract"
	"github.com/timetabl/positano/internal/merger"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/source"
)

// Importer replays cached sweeps through a source adapter.
type Importer struct {
	store cache.Store
	log   zerolog.Logger
}

func NewImporter(store cache.Store, log zerolog.Logger) *Importer {
	return &Importer{
		store: store,
		log:   log.With().Str("component", "importer").Logger(),
	}
}

// Import builds every cached row for a's university and semester. Rows
// that fail to build are logged and counted; they never stop the run.
// The result has one lecture per section, sorted by section id.
func (im *Importer) Import(ctx context.Context, a source.Adapter) ([]*model.Lecture, model.ImportRun, error) {
	run := model.ImportRun{
		ID:         uuid.New(),
		University: a.University(),
		Semester:   a.Semester(),
		StartedAt:  time.Now(),
	}
	log := im.log.With().
		Str("run_id", run.ID.String()).
		Str("univ", run.University.String()).
		Str("semester", run.Semester.String()).
		Logger()

	m := merger.New()
	if fixed, ok := a.(source.FixedRecords); ok {
		lectures, err := fixed.FixedLectures()
		if err != nil {
			return nil, run, err
		}
		for _, l := range lectures {
			if err := m.Add(l); err != nil {
				return nil, run, err
			}
		}
	}

	rows, err := im.Rows(ctx, a.University(), a.Semester())
	if err != nil {
		return nil, run, err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, run, err
		}
		run.Rows++
		l, err := a.Build(row)
		if err != nil {
			if errors.Is(err, source.ErrSkipRow) {
				run.Skipped++
				log.Debug().Err(err).Str("category", row.Category).Msg("row skipped")
				continue
			}
			run.Failed++
			log.Warn().Err(source.WrapRow(a.University(), row, err)).Msg("row rejected")
			continue
		}
		if err := m.Add(l); err != nil {
			return nil, run, err
		}
	}

	lectures := m.Lectures()
	sort.SliceStable(lectures, func(i, j int) bool {
		return lectures[i].SectionID() < lectures[j].SectionID()
	})

	run.Lectures = len(lectures)
	run.FinishedAt = time.Now()
	log.Info().
		Int("rows", run.Rows).
		Int("skipped", run.Skipped).
		Int("failed", run.Failed).
		Int("lectures", run.Lectures).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("import finished")

	return lectures, run, nil
}

// Rows loads every cached sweep of u for sem in key order.
func (im *Importer) Rows(ctx context.Context, u model.University, sem model.Semester) ([]source.Row, error) {
	if usesRowCache(u) {
		return im.cachedRows(ctx, u, sem)
	}
	return im.pageRows(ctx, u, sem)
}

func (im *Importer) pageRows(ctx context.Context, u model.University, sem model.Semester) ([]source.Row, error) {
	layout, err := extract.For(u)
	if err != nil {
		return nil, err
	}
	prefix := config.CacheKey.PagePrefix(u.String(), sem.Code())
	keys, err := im.store.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list cached pages: %w", err)
	}

	var rows []source.Row
	for _, key := range keys {
		page, err := im.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		fields, err := extract.Rows(bytes.NewReader(page), layout)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", key, err)
		}
		category := strings.TrimPrefix(key, prefix)
		for _, f := range fields {
			rows = append(rows, source.Row{Category: category, Fields: f})
		}
	}
	return rows, nil
}

func (im *Importer) cachedRows(ctx context.Context, u model.University, sem model.Semester) ([]source.Row, error) {
	keys, err := im.store.Keys(ctx, config.CacheKey.RowsPrefix(u.String(), sem.Code()))
	if err != nil {
		return nil, fmt.Errorf("list cached rows: %w", err)
	}

	var rows []source.Row
	for _, key := range keys {
		data, err := im.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		var sweep []source.Row
		if err := json.Unmarshal(data, &sweep); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		rows = append(rows, sweep...)
	}
	return rows, nil
}

// Stash stores one fetched page of u's catalog under sweep and returns
// how many rows it holds. Grid sources have their rows extracted now and
// appended to the sweep's cached rows; other pages are kept verbatim.
func (im *Importer) Stash(ctx context.Context, u model.University, sem model.Semester, sweep string, page io.Reader) (int, error) {
	if strings.TrimSpace(sweep) == "" {
		return 0, &model.ArgumentError{Field: "sweep", Value: sweep}
	}
	layout, err := extract.For(u)
	if err != nil {
		return 0, err
	}
	raw, err := io.ReadAll(page)
	if err != nil {
		return 0, err
	}
	fields, err := extract.Rows(bytes.NewReader(raw), layout)
	if err != nil {
		return 0, err
	}

	if !usesRowCache(u) {
		key := config.CacheKey.PageKey(u.String(), sem.Code(), sweep)
		if err := im.store.Put(ctx, key, raw); err != nil {
			return 0, err
		}
		im.log.Info().Str("key", key).Int("rows", len(fields)).Msg("page stashed")
		return len(fields), nil
	}

	key := config.CacheKey.RowsKey(u.String(), sem.Code(), sweep)
	var rows []source.Row
	existing, err := im.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(existing, &rows); err != nil {
			return 0, fmt.Errorf("decode %s: %w", key, err)
		}
	case !errors.Is(err, cache.ErrMiss):
		return 0, err
	}
	for _, f := range fields {
		rows = append(rows, source.Row{Category: sweep, Fields: f})
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return 0, err
	}
	if err := im.store.Put(ctx, key, data); err != nil {
		return 0, err
	}
	im.log.Info().Str("key", key).Int("rows", len(fields)).Int("total", len(rows)).Msg("rows stashed")
	return len(fields), nil
}
