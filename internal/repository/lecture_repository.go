package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/schedule"
	"github.com/timetabl/positano/internal/timecodec"
)

var ErrLectureNotFound = errors.New("lecture not found")

// LectureRepository handles catalog data access.
type LectureRepository struct {
	pool *pgxpool.Pool
}

// NewLectureRepository creates a new LectureRepository.
func NewLectureRepository(pool *pgxpool.Pool) *LectureRepository {
	return &LectureRepository{pool: pool}
}

// SaveImport records run and upserts its lectures in one transaction.
func (r *LectureRepository) SaveImport(ctx context.Context, run model.ImportRun, lectures []*model.Lecture) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO catalog_imports (id, univ, semester, rows_seen, skipped, failed, lectures, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, int(run.University), run.Semester.Ordinal(), run.Rows, run.Skipped, run.Failed,
		run.Lectures, run.StartedAt, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert import run: %w", err)
	}

	if err := saveLectures(ctx, tx, &run.ID, lectures); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveLectures upserts lectures that did not come with an import run.
func (r *LectureRepository) SaveLectures(ctx context.Context, lectures []*model.Lecture) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := saveLectures(ctx, tx, nil, lectures); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// saveLectures upserts the course and lecture rows, then replaces each
// lecture's lessons as a unit.
func saveLectures(ctx context.Context, tx pgx.Tx, importID *uuid.UUID, lectures []*model.Lecture) error {
	var lessonRows [][]interface{}

	for _, l := range lectures {
		univ := int(l.University())

		var courseID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO courses (univ, title, lecturer) VALUES ($1, $2, $3)
			 ON CONFLICT (univ, title, lecturer) DO UPDATE SET title = EXCLUDED.title
			 RETURNING id`,
			univ, l.Title(), l.Lecturer(),
		).Scan(&courseID)
		if err != nil {
			return fmt.Errorf("upsert course for %s: %w", l.Key(), err)
		}

		lessons := l.Lessons()
		var lectureID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO lectures (univ, semester, litid, domain, year, title, credits, lecturer, remark,
			                       time_txt, location_txt, course_id, import_id, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
			 ON CONFLICT (univ, semester, litid) DO UPDATE SET
			     domain = EXCLUDED.domain,
			     year = EXCLUDED.year,
			     title = EXCLUDED.title,
			     credits = EXCLUDED.credits,
			     lecturer = EXCLUDED.lecturer,
			     remark = EXCLUDED.remark,
			     time_txt = EXCLUDED.time_txt,
			     location_txt = EXCLUDED.location_txt,
			     course_id = EXCLUDED.course_id,
			     import_id = COALESCE(EXCLUDED.import_id, lectures.import_id),
			     updated_at = NOW()
			 RETURNING id`,
			univ, l.Semester().Ordinal(), l.SectionID(), l.Domain(), l.YearMask(), l.Title(), l.Credits(),
			l.Lecturer(), l.Remark(), schedule.TimeText(lessons), schedule.LocationText(lessons),
			courseID, importID,
		).Scan(&lectureID)
		if err != nil {
			return fmt.Errorf("upsert lecture %s: %w", l.Key(), err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM lessons WHERE lecture_id = $1`, lectureID); err != nil {
			return fmt.Errorf("clear lessons of %s: %w", l.Key(), err)
		}

		for _, ls := range lessons {
			row := []interface{}{lectureID, ls.Day(), ls.Time(), ls.Period(), ls.Location()}
			for d := 1; d <= 7; d++ {
				row = append(row, int64(ls.MaskOfDay(d)))
			}
			lessonRows = append(lessonRows, row)
		}
	}

	if len(lessonRows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"lessons"},
		[]string{"lecture_id", "day", "time", "period", "location", "day1", "day2", "day3", "day4", "day5", "day6", "day7"},
		pgx.CopyFromRows(lessonRows),
	)
	if err != nil {
		return fmt.Errorf("copy lessons: %w", err)
	}
	return nil
}

// List returns every lecture of a university and semester ordered by
// section id.
func (r *LectureRepository) List(ctx context.Context, univ model.University, sem model.Semester) ([]*model.Lecture, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, litid, domain, year, title, credits, lecturer, remark
		 FROM lectures WHERE univ = $1 AND semester = $2
		 ORDER BY litid ASC`,
		int(univ), sem.Ordinal())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		ids  []int64
		recs []model.LectureRecord
	)
	for rows.Next() {
		var id int64
		rec := model.LectureRecord{University: univ.String(), Semester: sem.Ordinal()}
		if err := rows.Scan(&id, &rec.SectionID, &rec.Domain, &rec.YearMask, &rec.Title, &rec.Credits,
			&rec.Lecturer, &rec.Remark); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	lessons, err := r.lessonsOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	codec := timecodec.Lookup(univ)
	out := make([]*model.Lecture, 0, len(recs))
	for i, rec := range recs {
		rec.Lessons = lessons[ids[i]]
		l, err := rec.Build(codec)
		if err != nil {
			return nil, fmt.Errorf("rebuild lecture %s: %w", rec.SectionID, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Get returns the lecture identified by key.
func (r *LectureRepository) Get(ctx context.Context, key model.Key) (*model.Lecture, error) {
	var id int64
	rec := model.LectureRecord{
		University: key.University.String(),
		Semester:   key.Semester.Ordinal(),
		SectionID:  key.SectionID,
	}
	err := r.pool.QueryRow(ctx,
		`SELECT id, domain, year, title, credits, lecturer, remark
		 FROM lectures WHERE univ = $1 AND semester = $2 AND litid = $3`,
		int(key.University), key.Semester.Ordinal(), key.SectionID,
	).Scan(&id, &rec.Domain, &rec.YearMask, &rec.Title, &rec.Credits, &rec.Lecturer, &rec.Remark)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLectureNotFound
		}
		return nil, err
	}

	lessons, err := r.lessonsOf(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	rec.Lessons = lessons[id]
	return rec.Build(timecodec.Lookup(key.University))
}

func (r *LectureRepository) lessonsOf(ctx context.Context, ids []int64) (map[int64][]model.LessonRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT lecture_id, day, time, period, location
		 FROM lessons WHERE lecture_id = ANY($1)
		 ORDER BY lecture_id, day, time`,
		ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]model.LessonRecord, len(ids))
	for rows.Next() {
		var (
			id int64
			ls model.LessonRecord
		)
		if err := rows.Scan(&id, &ls.Day, &ls.Time, &ls.Period, &ls.Location); err != nil {
			return nil, err
		}
		out[id] = append(out[id], ls)
	}
	return out, rows.Err()
}
