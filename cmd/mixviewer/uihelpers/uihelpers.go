package uihelpers

import (
	"math"
	"path/filepath"
	"strings"
)

// Preview resolution limits. Below the minimum go-chart text becomes unreadable; above the
// maximum a preview takes too long to redraw on resize.
const (
	MinPreviewDPI = 48
	MaxPreviewDPI = 200
)

// PreviewDPI picks a resolution at which a figure widthIn inches wide fills a canvas of winW
// pixels, clamped to [MinPreviewDPI, MaxPreviewDPI] and rounded to a multiple of 4.
func PreviewDPI(winW float32, widthIn float64) float64 {
	if widthIn <= 0 || winW <= 0 {
		return MinPreviewDPI
	}
	dpi := float64(winW) / widthIn
	dpi = math.Floor(dpi/4) * 4
	if dpi < MinPreviewDPI {
		dpi = MinPreviewDPI
	}
	if dpi > MaxPreviewDPI {
		dpi = MaxPreviewDPI
	}
	return dpi
}

// TabTitle turns an artifact file name into a short tab label,
// e.g. "fig2_world_share_lines.png" -> "World share lines".
func TabTitle(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "fig") {
		parts = parts[1:]
	}
	if len(parts) > 1 && parts[0] == "main" && parts[1] == "figure" {
		parts = parts[2:]
	}
	if len(parts) == 0 {
		return base
	}
	s := strings.Join(parts, " ")
	s = strings.ReplaceAll(s, "lowcarbon", "low-carbon")
	return strings.ToUpper(s[:1]) + s[1:]
}

// PushRecent returns list with path moved to the front, without duplicates, at most max entries.
func PushRecent(list []string, path string, max int) []string {
	out := []string{path}
	for _, f := range list {
		if f != path && f != "" && len(out) < max {
			out = append(out, f)
		}
	}
	return out
}

// TruncatePath shortens p to about n characters, keeping the file name.
func TruncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}
