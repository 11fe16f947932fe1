package uihelpers

import (
	"strings"
	"testing"
)

func TestPreviewDPI(t *testing.T) {
	cases := []struct {
		winW    float32
		widthIn float64
		want    float64
	}{
		{1000, 10, 100},
		{1003, 10, 100},
		{100, 10, MinPreviewDPI},
		{8000, 7, MaxPreviewDPI},
		{0, 9, MinPreviewDPI},
		{900, 0, MinPreviewDPI},
	}
	for _, c := range cases {
		if got := PreviewDPI(c.winW, c.widthIn); got != c.want {
			t.Fatalf("PreviewDPI(%v, %v) = %v want %v", c.winW, c.widthIn, got, c.want)
		}
	}
}

func TestTabTitle(t *testing.T) {
	cases := map[string]string{
		"fig1_world_mix_area.png":                  "World mix area",
		"fig3_lowcarbon_share_small_multiples.png": "Low-carbon share small multiples",
		"fig4_top15_lowcarbon.png":                 "Top15 low-carbon",
		"main_figure_energy_mix_dashboard.png":     "Energy mix dashboard",
		"plain.png":                                "Plain",
	}
	for in, want := range cases {
		if got := TabTitle(in); got != want {
			t.Errorf("TabTitle(%q) = %q want %q", in, got, want)
		}
	}
}

func TestPushRecent(t *testing.T) {
	got := PushRecent([]string{"a", "b", "c"}, "b", 10)
	if strings.Join(got, ",") != "b,a,c" {
		t.Fatalf("move to front: %v", got)
	}
	got = PushRecent([]string{"a", "b", "c"}, "d", 3)
	if strings.Join(got, ",") != "d,a,b" {
		t.Fatalf("cap: %v", got)
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("short.csv", 60); got != "short.csv" {
		t.Fatalf("short path changed: %q", got)
	}
	long := "/very/long/directory/structure/that/keeps/going/and/going/electricity-prod-source-stacked.csv"
	got := TruncatePath(long, 60)
	if !strings.HasSuffix(got, "electricity-prod-source-stacked.csv") || len(got) > 64 {
		t.Fatalf("truncated %q", got)
	}
}
