package model

import "testing"

func TestLetterFor(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "A"},
		{85, "A"},
		{84.9, "B"},
		{75, "B"},
		{65, "C"},
		{50, "D"},
		{49.9, "E"},
		{0, "E"},
	}
	for _, c := range cases {
		if got := LetterFor(c.score); got != c.want {
			t.Errorf("LetterFor(%v) = %q, want %q", c.score, got, c.want)
		}
	}
}
