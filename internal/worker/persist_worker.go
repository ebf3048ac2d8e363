package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/timecodec"
)

const (
	PersistBatchTimeout = 2 * time.Second
	PersistPollTimeout  = 1 * time.Second
)

// LectureSaver is the storage the worker flushes into.
type LectureSaver interface {
	SaveLectures(ctx context.Context, lectures []*model.Lecture) error
}

// PersistWorker drains lecture records queued by an import and upserts
// them in batches.
type PersistWorker struct {
	saver     LectureSaver
	rdb       *redis.Client
	lists     cache.Store
	batchSize int
	log       zerolog.Logger
}

// NewPersistWorker creates a PersistWorker. lists holds the API's cached
// lecture lists; the worker drops the entries a flush makes stale.
func NewPersistWorker(saver LectureSaver, rdb *redis.Client, lists cache.Store, batchSize int, log zerolog.Logger) *PersistWorker {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PersistWorker{
		saver:     saver,
		rdb:       rdb,
		lists:     lists,
		batchSize: batchSize,
		log:       log.With().Str("component", "persist_worker").Logger(),
	}
}

// Enqueue pushes one record per lecture onto the persist queue.
func Enqueue(ctx context.Context, rdb *redis.Client, lectures []*model.Lecture) error {
	if len(lectures) == 0 {
		return nil
	}
	pipe := rdb.Pipeline()
	for _, l := range lectures {
		raw, err := json.Marshal(l.Record())
		if err != nil {
			return err
		}
		pipe.RPush(ctx, config.WorkerKey.PersistLecturesQueue, raw)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *PersistWorker) Start(ctx context.Context) {
	w.log.Info().Int("batch_size", w.batchSize).Msg("PersistWorker started")

	batch := make([]model.LectureRecord, 0, w.batchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= w.batchSize || time.Since(lastFlush) >= PersistBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, PersistPollTimeout, config.WorkerKey.PersistLecturesQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var rec model.LectureRecord
			if err := json.Unmarshal([]byte(item[1]), &rec); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, rec)
		}
	}
}

// ----------------------------------------------------------------
// Batch upsert wrapper
// ----------------------------------------------------------------

func (w *PersistWorker) flushSafe(ctx context.Context, batch []model.LectureRecord) {
	lectures := w.rebuild(batch)
	if len(lectures) == 0 {
		return
	}

	if err := w.saver.SaveLectures(ctx, lectures); err != nil {
		w.log.Warn().Err(err).Int("count", len(lectures)).Msg("bulk lecture upsert failed, using fallback")

		var saved []*model.Lecture
		for _, l := range lectures {
			if err := w.saver.SaveLectures(ctx, []*model.Lecture{l}); err != nil {
				w.log.Error().Err(err).Str("lecture", l.Key().String()).Msg("single upsert failed, requeueing")
				raw, _ := json.Marshal(l.Record())
				w.rdb.RPush(ctx, config.WorkerKey.PersistLecturesQueue, raw)
				continue
			}
			saved = append(saved, l)
		}
		w.invalidateLists(ctx, saved)
		return
	}

	w.log.Debug().Int("count", len(lectures)).Msg("lectures persisted")
	w.invalidateLists(ctx, lectures)
}

// rebuild revalidates queued records. A record that no longer builds is
// dropped, since requeueing it would fail forever.
func (w *PersistWorker) rebuild(batch []model.LectureRecord) []*model.Lecture {
	out := make([]*model.Lecture, 0, len(batch))
	for _, rec := range batch {
		univ, err := model.ParseUniversity(rec.University)
		if err != nil {
			w.log.Error().Err(err).Str("litid", rec.SectionID).Msg("dropping queued record")
			continue
		}
		l, err := rec.Build(timecodec.Lookup(univ))
		if err != nil {
			w.log.Error().Err(err).Str("litid", rec.SectionID).Msg("dropping queued record")
			continue
		}
		out = append(out, l)
	}
	return out
}

func (w *PersistWorker) invalidateLists(ctx context.Context, lectures []*model.Lecture) {
	if w.lists == nil {
		return
	}
	seen := make(map[string]struct{})
	for _, l := range lectures {
		key := config.CacheKey.LectureListKey(l.University().String(), l.Semester().Code())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if err := w.lists.Delete(ctx, key); err != nil {
			w.log.Warn().Err(err).Str("key", key).Msg("list cache invalidation failed")
		}
	}
}
