package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/model"
)

func newImporter(t *testing.T) (*Importer, cache.Store) {
	t.Helper()
	store, err := cache.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewImporter(store, zerolog.New(io.Discard)), store
}

func semester(t *testing.T, code string) model.Semester {
	t.Helper()
	s, err := model.ParseSemester(code)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// sogangRow renders one 23-cell grid row.
func sogangRow(code, class, title, schedule, credits string) string {
	cells := make([]string, 23)
	cells[2] = "학부"
	cells[4] = code
	cells[5] = class
	cells[6] = title
	cells[8] = credits
	cells[9] = schedule
	cells[11] = "김교수"
	cells[19] = "1,2"
	var b strings.Builder
	b.WriteString("<tr>")
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString("</tr>")
	return b.String()
}

func sogangPage(rows ...string) string {
	return "<table><tr><th>header</th></tr>" + strings.Join(rows, "") + "</table>"
}

func TestImporter_MergesAcrossSweeps(t *testing.T) {
	ctx := context.Background()
	im, _ := newImporter(t)
	sem := semester(t, "20151")

	pages := map[string]string{
		"컴퓨터공학과": sogangPage(
			sogangRow("CSE3013", "01", "운영체제", "월,수 10:30~11:45 K301", "3.0"),
			sogangRow("CSE1001", "01", "기초프로그래밍", "화 09:00~10:15", "3.0"),
		),
		"교양": sogangPage(
			sogangRow("CSE1001", "01", "다른 제목", "", "3.0"),
			sogangRow("bad", "01", "잘못된 코드", "", "3.0"),
		),
	}
	for sweep, page := range pages {
		if _, err := im.Stash(ctx, model.Sogang, sem, sweep, strings.NewReader(page)); err != nil {
			t.Fatalf("Stash(%s): %v", sweep, err)
		}
	}

	a, err := AdapterFor(model.Sogang, sem)
	if err != nil {
		t.Fatal(err)
	}
	lectures, run, err := im.Import(ctx, a)
	if err != nil {
		t.Fatal(err)
	}

	if len(lectures) != 2 {
		t.Fatalf("got %d lectures, want 2", len(lectures))
	}
	if lectures[0].SectionID() != "CSE1001-01" || lectures[1].SectionID() != "CSE3013-01" {
		t.Errorf("order = %s, %s", lectures[0].SectionID(), lectures[1].SectionID())
	}
	if got := lectures[0].Domain(); got != "교양,컴퓨터공학과" {
		t.Errorf("merged domain = %q", got)
	}
	// Keys are visited in order, so the 교양 sweep is seen first.
	if got := lectures[0].Title(); got != "다른 제목" {
		t.Errorf("representative title = %q", got)
	}
	if run.Rows != 6 || run.Skipped != 2 || run.Failed != 1 || run.Lectures != 2 {
		t.Errorf("run = %+v", run)
	}
	if run.University != model.Sogang || run.Semester != sem || run.FinishedAt.Before(run.StartedAt) {
		t.Errorf("run identity = %+v", run)
	}
}

func TestImporter_EwhaIncludesChapels(t *testing.T) {
	ctx := context.Background()
	im, _ := newImporter(t)
	sem := semester(t, "2015-1")

	cells := make([]string, 23)
	cells[0] = "1"
	cells[1] = "36441"
	cells[2] = "01"
	cells[3] = "미적분학"
	cells[4] = "전기"
	cells[7] = "1"
	cells[8] = "이영희"
	cells[9] = "3"
	cells[11] = "월<br>수"
	cells[12] = "2~3<br>2~3"
	cells[13] = "B151"
	var b strings.Builder
	b.WriteString(`<div id="wrap"><table class="tbl_type2"><tr>`)
	for _, c := range cells {
		fmt.Fprintf(&b, "<td>%s</td>", c)
	}
	b.WriteString(`</tr></table></div>`)

	n, err := im.Stash(ctx, model.Ewha, sem, "1", strings.NewReader(b.String()))
	if err != nil || n != 1 {
		t.Fatalf("Stash = %d, %v", n, err)
	}

	a, _ := AdapterFor(model.Ewha, sem)
	lectures, run, err := im.Import(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(lectures) != 8 || run.Rows != 1 {
		t.Fatalf("got %d lectures from %d rows", len(lectures), run.Rows)
	}
	if lectures[0].SectionID() != "00000-01" || lectures[7].SectionID() != "36441-01" {
		t.Errorf("first/last = %s/%s", lectures[0].SectionID(), lectures[7].SectionID())
	}
	v := NewView(lectures[7])
	if v.Domain != "전공기초" || v.TimeText != "월수2-3" || v.DayMasks[0] != 0b1100 {
		t.Errorf("view = %+v", v)
	}
}

func TestImporter_YonseiRowsAccumulate(t *testing.T) {
	ctx := context.Background()
	im, store := newImporter(t)
	sem := semester(t, "20152")

	grid := func(section, slot string) string {
		cells := make([]string, 17)
		cells[3] = "1"
		cells[6] = section
		cells[7] = "3"
		cells[8] = "글쓰기"
		cells[14] = slot
		var b strings.Builder
		b.WriteString(`<div role="row">`)
		for _, c := range cells {
			fmt.Fprintf(&b, `<div role="gridcell">%s</div>`, c)
		}
		b.WriteString(`</div>`)
		return b.String()
	}

	for _, page := range []string{grid("YCA1001-01-00", "월1"), grid("YCA1001-02-00", "화2")} {
		if _, err := im.Stash(ctx, model.Yonsei, sem, "대학글쓰기", strings.NewReader(page)); err != nil {
			t.Fatal(err)
		}
	}
	keys, _ := store.Keys(ctx, "rows:")
	if len(keys) != 1 {
		t.Fatalf("keys = %q", keys)
	}

	a, _ := AdapterFor(model.Yonsei, sem)
	lectures, _, err := im.Import(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(lectures) != 2 || lectures[1].Domain() != "대학글쓰기" {
		t.Fatalf("lectures = %d", len(lectures))
	}
}

func TestImporter_EmptyCache(t *testing.T) {
	im, _ := newImporter(t)
	a, _ := AdapterFor(model.Sogang, semester(t, "20151"))
	lectures, run, err := im.Import(context.Background(), a)
	if err != nil || len(lectures) != 0 || run.Rows != 0 {
		t.Errorf("Import on empty cache = %d, %+v, %v", len(lectures), run, err)
	}
}

func TestImporter_Cancelled(t *testing.T) {
	im, _ := newImporter(t)
	sem := semester(t, "20151")
	page := sogangPage(sogangRow("CSE3013", "01", "운영체제", "", "3.0"))
	if _, err := im.Stash(context.Background(), model.Sogang, sem, "x", strings.NewReader(page)); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a, _ := AdapterFor(model.Sogang, sem)
	if _, _, err := im.Import(ctx, a); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAdapterFor(t *testing.T) {
	sem := semester(t, "20151")
	for _, u := range []model.University{model.Sogang, model.Yonsei, model.Wonju, model.Ewha} {
		a, err := AdapterFor(u, sem)
		if err != nil || a.University() != u {
			t.Errorf("AdapterFor(%s) = %v, %v", u, a, err)
		}
	}
	if _, err := AdapterFor(model.Hongik, sem); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("AdapterFor(hongik) = %v", err)
	}
}

func TestStash_RejectsBlankSweep(t *testing.T) {
	im, _ := newImporter(t)
	if _, err := im.Stash(context.Background(), model.Sogang, semester(t, "20151"), " ", strings.NewReader("")); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("err = %v", err)
	}
}
