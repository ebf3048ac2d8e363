package model

import "strings"

// University identifies the catalog a record was scraped from. The numeric
// value is what gets persisted.
type University int

const (
	Sogang University = iota + 1
	Yonsei
	Wonju
	Ewha
	Hongik
)

var universityNames = map[University]string{
	Sogang: "sogang",
	Yonsei: "yonsei",
	Wonju:  "wonju",
	Ewha:   "ewha",
	Hongik: "hongik",
}

// Universities lists every known university in id order.
var Universities = []University{Sogang, Yonsei, Wonju, Ewha, Hongik}

// ParseUniversity resolves a lowercase university name.
func ParseUniversity(name string) (University, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for u, s := range universityNames {
		if s == n {
			return u, nil
		}
	}
	return 0, invalidArgument("university", name)
}

// UniversityFromID validates a persisted university id.
func UniversityFromID(id int) (University, error) {
	u := University(id)
	if !u.Valid() {
		return 0, outOfRange("university", id)
	}
	return u, nil
}

func (u University) Valid() bool {
	_, ok := universityNames[u]
	return ok
}

func (u University) String() string {
	if s, ok := universityNames[u]; ok {
		return s
	}
	return "unknown"
}
