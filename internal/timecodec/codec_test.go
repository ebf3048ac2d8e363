package timecodec

import (
	"errors"
	"testing"

	"github.com/timetabl/positano/internal/model"
)

func TestFor(t *testing.T) {
	tests := []struct {
		univ model.University
		want Codec
	}{
		{model.Sogang, Codec{450, 90, 10}},
		{model.Yonsei, Codec{480, 60, 15}},
		{model.Wonju, Codec{480, 60, 15}},
		{model.Ewha, Codec{390, 90, 16}},
	}
	for _, tt := range tests {
		got, err := For(tt.univ)
		if err != nil {
			t.Fatalf("For(%s): %v", tt.univ, err)
		}
		if got != tt.want {
			t.Errorf("For(%s) = %+v, want %+v", tt.univ, got, tt.want)
		}
	}

	if _, err := For(model.Hongik); !errors.Is(err, ErrNoCodec) {
		t.Errorf("For(hongik) = %v, want ErrNoCodec", err)
	}
	if Lookup(model.Hongik) != nil {
		t.Error("Lookup(hongik) should be nil")
	}
}

func TestCodec_PeriodOf(t *testing.T) {
	ewha, _ := For(model.Ewha)
	tests := []struct {
		raw  int
		want int
	}{
		{390, 0},
		{479, 0},
		{480, 1},
		{390 + 16*90, 16},
		{390 + 17*90 - 1, 16},
	}
	for _, tt := range tests {
		got, err := ewha.PeriodOf(tt.raw)
		if err != nil {
			t.Errorf("PeriodOf(%d): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PeriodOf(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestCodec_PeriodOfNeverClamps(t *testing.T) {
	sogang, _ := For(model.Sogang)
	for _, raw := range []int{0, 449, 450 + 11*90, 9999} {
		_, err := sogang.PeriodOf(raw)
		var re *model.RangeError
		if !errors.As(err, &re) || re.Field != "period_index" {
			t.Errorf("PeriodOf(%d) = %v, want period_index RangeError", raw, err)
		}
	}
}

func TestCodec_StartMinute(t *testing.T) {
	yonsei, _ := For(model.Yonsei)
	for p := 0; p <= yonsei.MaxPeriod; p++ {
		m, err := yonsei.StartMinute(p)
		if err != nil {
			t.Fatal(err)
		}
		if back, _ := yonsei.PeriodOf(m); back != p {
			t.Errorf("PeriodOf(StartMinute(%d)) = %d", p, back)
		}
	}
	if _, err := yonsei.StartMinute(16); err == nil {
		t.Error("StartMinute past MaxPeriod should fail")
	}
}
