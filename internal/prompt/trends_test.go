package prompt

import (
	"math"
	"strings"
	"testing"
)

func TestNormalizeTrend(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   any
		want int
	}{
		{"in-range int", 2, 2},
		{"lower bound", 1, 1},
		{"upper bound", 3, 3},
		{"below range", -7, 1},
		{"above range", 99, 3},
		{"zero", 0, 1},
		{"float rounds down", 2.9, 2},
		{"float below", 0.4, 1},
		{"numeric string", "3", 3},
		{"numeric string above", "12.5", 3},
		{"non-numeric string", "high", 1},
		{"empty string", "", 1},
		{"nil", nil, 1},
		{"bool", true, 1},
		{"NaN", math.NaN(), 1},
		{"+Inf", math.Inf(1), 1},
		{"-Inf", math.Inf(-1), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTrend(tc.in); got != tc.want {
				t.Fatalf("NormalizeTrend(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeTrends(t *testing.T) {
	t.Parallel()

	got := NormalizeTrends(map[string]any{
		"urbanization":  5.0,
		"digitization":  "2",
		"deregulation":  math.NaN(),
		"privatization": -1,
	})
	want := map[string]int{
		"urbanization":  3,
		"digitization":  2,
		"deregulation":  1,
		"privatization": 1,
	}
	for k, w := range want {
		if got[k] != w {
			t.Fatalf("trend %s = %d, want %d", k, got[k], w)
		}
	}
	if NormalizeTrends(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestBuildIncludesFields(t *testing.T) {
	t.Parallel()

	lat, lon := 48.2082, 16.3738
	p := Build(Input{
		Country:       "Austria",
		Sector:        "energy",
		Description:   "grid-scale battery storage site",
		Latitude:      &lat,
		Longitude:     &lon,
		LocationLabel: "Vienna",
		Trends:        map[string]int{"electrification": 3},
		Mode:          ModeProject,
	})
	for _, want := range []string{"Austria", "energy", "Vienna", "16.37380", "electrification: 3", "battery storage"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestInstructionsPerMode(t *testing.T) {
	t.Parallel()

	if Instructions(ModeProject) == Instructions(ModeAuthorizationFramework) {
		t.Fatalf("expected distinct instruction blobs per mode")
	}
	if !ValidMode("project") || !ValidMode("authorizationFramework") {
		t.Fatalf("expected both enum values to validate")
	}
	if ValidMode("both") || ValidMode("") {
		t.Fatalf("expected unknown modes to be rejected")
	}
}
