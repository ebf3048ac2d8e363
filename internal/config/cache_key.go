package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PageKey returns the cache key for one fetched catalog page. sweep is
// the category the page was listed under (or its page number).
func (r *CacheKeyStruct) PageKey(univ, semester, sweep string) string {
	return fmt.Sprintf("page:%s:%s:%s", univ, semester, sweep)
}

// PagePrefix returns the prefix shared by every page of a source and semester
func (r *CacheKeyStruct) PagePrefix(univ, semester string) string {
	return fmt.Sprintf("page:%s:%s:", univ, semester)
}

// RowsKey returns the cache key for rows already extracted from a grid,
// stored as JSON
func (r *CacheKeyStruct) RowsKey(univ, semester, sweep string) string {
	return fmt.Sprintf("rows:%s:%s:%s", univ, semester, sweep)
}

// RowsPrefix returns the prefix shared by every extracted sweep of a source and semester
func (r *CacheKeyStruct) RowsPrefix(univ, semester string) string {
	return fmt.Sprintf("rows:%s:%s:", univ, semester)
}

// LectureListKey returns the cache key for the API's lecture list of a semester
func (r *CacheKeyStruct) LectureListKey(univ, semester string) string {
	return fmt.Sprintf("lectures:%s:%s", univ, semester)
}

var CacheKey = NewCacheKeyStruct()
