// Package extract flattens a cached catalog page into rows of trimmed
// cell texts using goquery selectors per source.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/timetabl/positano/internal/model"
)

// Layout says where a source's table rows and cells live.
type Layout struct {
	// Rows selects row elements in the document.
	Rows string
	// Cells selects cells inside a row. Empty means the row's element
	// children.
	Cells string
	// LineBreaks turns <br> into "\n" so multi-line cells survive.
	LineBreaks bool
	// Keep drops rows it returns false for. Nil keeps every row.
	Keep func(fields []string) bool
}

const noData = "No data to display"

var layouts = map[model.University]Layout{
	model.Sogang: {Rows: "tr", Cells: "td"},
	model.Yonsei: yonseiGrid,
	model.Wonju:  yonseiGrid,
	model.Ewha: {
		Rows:       "#wrap table.tbl_type2 tr",
		LineBreaks: true,
		Keep: func(f []string) bool {
			return len(f) == 23 && isDigits(f[0])
		},
	},
}

var yonseiGrid = Layout{
	Rows:  "[role=row]",
	Cells: "[role=gridcell]",
	Keep: func(f []string) bool {
		if len(f) > 4 && f[4] == noData {
			return false
		}
		for _, c := range f {
			if c != "" {
				return true
			}
		}
		return false
	},
}

// For returns the layout of u's catalog pages.
func For(u model.University) (Layout, error) {
	l, ok := layouts[u]
	if !ok {
		return Layout{}, fmt.Errorf("no page layout for %s", u)
	}
	return l, nil
}

// Rows parses an HTML page and returns one field list per kept row.
func Rows(r io.Reader, layout Layout) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var out [][]string
	doc.Find(layout.Rows).Each(func(_ int, row *goquery.Selection) {
		if layout.LineBreaks {
			row.Find("br").ReplaceWithHtml("\n")
		}
		cells := row.Children()
		if layout.Cells != "" {
			cells = row.Find(layout.Cells)
		}
		fields := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			fields = append(fields, clean(c.Text()))
		})
		if layout.Keep != nil && !layout.Keep(fields) {
			return
		}
		out = append(out, fields)
	})
	return out, nil
}

var cleaner = strings.NewReplacer("\u00a0", " ", "\t", " ")

func clean(s string) string {
	return strings.TrimSpace(cleaner.Replace(s))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
