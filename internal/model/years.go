package model

import (
	"regexp"
	"strconv"
	"strings"
)

// AllGradesMask marks every grade level 1..6 as eligible.
const AllGradesMask = 0x3F

const maxGrade = 6

// AllGrades is the sentinel text decoding to AllGradesMask.
const AllGrades = "all grades"

var allGradesSentinels = map[string]struct{}{
	AllGrades: {},
	"전학년":     {},
}

var gradePattern = regexp.MustCompile(`\d+`)

// DecodeYears turns a grade list such as "1,3" (or "1학년,3학년") into a
// mask with bit g-1 set for every listed grade g. An empty text decodes to
// 0; the all-grades sentinel decodes to AllGradesMask.
func DecodeYears(text string) (int, error) {
	t := strings.TrimSpace(text)
	if _, ok := allGradesSentinels[strings.ToLower(t)]; ok {
		return AllGradesMask, nil
	}
	mask := 0
	for _, g := range gradePattern.FindAllString(t, -1) {
		n, err := strconv.Atoi(g)
		if err != nil || n < 1 || n > maxGrade {
			return 0, outOfRange("year", text)
		}
		mask |= 1 << (n - 1)
	}
	return mask, nil
}

// EncodeYears renders mask back into a sorted comma-joined grade list.
func EncodeYears(mask int) string {
	grades := make([]string, 0, maxGrade)
	for g := 1; g <= maxGrade; g++ {
		if mask&(1<<(g-1)) != 0 {
			grades = append(grades, strconv.Itoa(g))
		}
	}
	return strings.Join(grades, ",")
}

// ValidateYearMask checks a mask lies in [0, AllGradesMask].
func ValidateYearMask(mask int) error {
	if mask < 0 || mask > AllGradesMask {
		return outOfRange("year", mask)
	}
	return nil
}
