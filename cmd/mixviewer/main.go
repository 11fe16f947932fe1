package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/EnergyMix/cmd/mixviewer/uihelpers"
	"github.com/iafilius/EnergyMix/src/analysis"
	"github.com/iafilius/EnergyMix/src/charts"
	"github.com/iafilius/EnergyMix/src/config"
	"github.com/iafilius/EnergyMix/src/dataset"
	"github.com/iafilius/EnergyMix/src/logging"
)

type uiState struct {
	app    fyne.App
	window fyne.Window

	filePath string
	cfg      *config.Config
	views    *analysis.Views
	// fixedDPI disables the window-width based preview resolution when > 0.
	fixedDPI float64

	arts     []charts.Artifact
	canvases map[string]*canvas.Image
	tabs     *container.AppTabs
	table    *widget.Table
	status   *widget.Label
}

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	shotsDir := flag.String("screenshots", "", "Render all figures into this directory and exit (no window)")
	previewFlag := flag.Float64("preview-dpi", 0, "Preview resolution; 0 fits the window width")
	flag.Parse()

	cfg, err := config.Resolve(flag.CommandLine, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	explicit := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if *shotsDir != "" {
		dpi := *previewFlag
		if explicit["dpi"] {
			dpi = cfg.DPI
		}
		if dpi <= 0 {
			dpi = 110
		}
		if err := RunScreenshotsMode(cfg, *shotsDir, dpi); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a := app.NewWithID("com.energymix.viewer")
	w := a.NewWindow("Energy Mix Viewer")
	w.Resize(fyne.NewSize(1200, 860))

	state := &uiState{
		app:      a,
		window:   w,
		cfg:      cfg,
		filePath: a.Preferences().StringWithFallback("lastFile", cfg.InputPath),
		fixedDPI: *previewFlag,
		arts:     charts.Artifacts(),
		canvases: map[string]*canvas.Image{},
	}
	// Explicit settings win over the remembered session.
	if explicit["input"] {
		state.filePath = cfg.InputPath
	}
	if f := a.Preferences().StringWithFallback("focus", ""); f != "" && !explicit["focus"] && flags.ConfigPath == "" {
		state.cfg.FocusEntities = config.SplitList(f)
	}

	fileLabel := widget.NewLabel(uihelpers.TruncatePath(state.filePath, 60))
	state.status = widget.NewLabel("")
	focusEntry := widget.NewEntry()
	focusEntry.SetText(strings.Join(state.cfg.FocusEntities, ", "))
	focusEntry.SetPlaceHolder("Focus entities, comma-separated")
	topNSelect := widget.NewSelect([]string{"5", "10", "15", "20", "25"}, nil)
	topNSelect.Selected = strconv.Itoa(state.cfg.TopN)
	thresholdEntry := widget.NewEntry()
	thresholdEntry.SetText(strconv.FormatFloat(state.cfg.NoiseThreshold, 'g', -1, 64))

	top := container.NewVBox(
		container.NewHBox(
			widget.NewButton("Open…", func() { openFileDialog(state, fileLabel) }),
			widget.NewButton("Reload", func() { loadAll(state) }),
			fileLabel,
		),
		container.NewBorder(nil, nil, widget.NewLabel("Focus:"),
			container.NewHBox(widget.NewLabel("Top N:"), topNSelect, widget.NewLabel("Min TWh:"), thresholdEntry),
			focusEntry),
	)

	var items []*container.TabItem
	for _, art := range state.arts {
		img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 100, 60)))
		img.FillMode = canvas.ImageFillContain
		state.canvases[art.Name] = img
		items = append(items, container.NewTabItem(uihelpers.TabTitle(art.Name), container.NewScroll(img)))
	}
	state.table = newRankingTable(state)
	items = append(items, container.NewTabItem("Ranking", state.table))
	state.tabs = container.NewAppTabs(items...)
	state.tabs.SetTabLocation(container.TabLocationTop)
	state.tabs.SelectIndex(a.Preferences().IntWithFallback("selectedTabIndex", 0))
	state.tabs.OnSelected = func(*container.TabItem) {
		state.app.Preferences().SetInt("selectedTabIndex", state.tabs.SelectedIndex())
	}
	w.SetContent(container.NewBorder(top, state.status, nil, nil, state.tabs))

	// Rebuild views when the selection changes.
	focusEntry.OnSubmitted = func(s string) {
		if list := config.SplitList(s); len(list) > 0 {
			state.cfg.FocusEntities = list
			state.app.Preferences().SetString("focus", strings.Join(list, ","))
			loadAll(state)
		}
	}
	topNSelect.OnChanged = func(s string) {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			state.cfg.TopN = n
			loadAll(state)
		}
	}
	thresholdEntry.OnSubmitted = func(s string) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && f >= 0 {
			state.cfg.NoiseThreshold = f
			loadAll(state)
		}
	}

	// Redraw previews on window resize so they scale with width.
	prevW := int(w.Canvas().Size().Width)
	done := make(chan struct{})
	w.SetOnClosed(func() { close(done) })
	go func() {
		t := time.NewTicker(300 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				curW := int(w.Canvas().Size().Width)
				if curW != prevW {
					prevW = curW
					fyne.Do(func() { redrawCharts(state) })
				}
			}
		}
	}()

	buildMenus(state, fileLabel)
	loadAll(state)
	w.ShowAndRun()
}

func buildMenus(state *uiState, fileLabel *widget.Label) {
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(uihelpers.TruncatePath(f, 60), func() {
			setFile(state, fileLabel, f)
			buildMenus(state, fileLabel)
		}))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() {
		state.app.Preferences().SetString("recentFiles", "")
		buildMenus(state, fileLabel)
	})
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", func() { openFileDialog(state, fileLabel) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Current Chart…", func() { exportCurrentChart(state) }),
		fyne.NewMenuItem("Export All Figures…", func() { exportAllFigures(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	canv := state.window.Canvas()
	for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { openFileDialog(state, fileLabel) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: mod}, func(fyne.Shortcut) { loadAll(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { state.window.Close() })
	}
}

func openFileDialog(state *uiState, fileLabel *widget.Label) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		setFile(state, fileLabel, rc.URI().Path())
		buildMenus(state, fileLabel)
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	d.Show()
}

func setFile(state *uiState, fileLabel *widget.Label, path string) {
	state.filePath = path
	fileLabel.SetText(uihelpers.TruncatePath(path, 60))
	prefs := state.app.Preferences()
	prefs.SetString("lastFile", path)
	prefs.SetString("recentFiles", strings.Join(uihelpers.PushRecent(recentFiles(state), path, 10), "\n"))
	loadAll(state)
}

func recentFiles(state *uiState) []string {
	raw := state.app.Preferences().StringWithFallback("recentFiles", "")
	var out []string
	for _, p := range strings.Split(raw, "\n") {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

// loadAll reads the input, rebuilds the views and redraws every tab.
func loadAll(state *uiState) {
	start := time.Now()
	tbl, err := dataset.Load(state.filePath, state.cfg.Schema())
	if err != nil {
		state.status.SetText("Load failed")
		dialog.ShowError(err, state.window)
		return
	}
	v, err := analysis.Build(tbl, analysis.Options{
		WorldEntity:    state.cfg.WorldEntity,
		FocusEntities:  state.cfg.FocusEntities,
		NoiseThreshold: state.cfg.NoiseThreshold,
		TopN:           state.cfg.TopN,
	})
	if err != nil {
		state.status.SetText("No data")
		dialog.ShowError(err, state.window)
		return
	}
	state.views = v
	redrawCharts(state)
	if state.table != nil {
		state.table.Refresh()
	}
	msg := fmt.Sprintf("%d rows, %d entities, latest year %d (%s)", len(tbl.Rows), len(tbl.Entities()), v.Snapshot.Year, time.Since(start).Round(time.Millisecond))
	if len(v.Focus.Missing) > 0 {
		msg += "; not in input: " + strings.Join(v.Focus.Missing, ", ")
	}
	state.status.SetText(msg)
}

// previewDPI fits the widest figure to the window unless a resolution was given on the command line.
func previewDPI(state *uiState, art charts.Artifact) float64 {
	if state.fixedDPI > 0 {
		return state.fixedDPI
	}
	w := float32(1100)
	if c := state.window.Canvas(); c != nil && c.Size().Width > 0 {
		w = c.Size().Width*0.95 - 12
	}
	return uihelpers.PreviewDPI(w, figureWidth(art.Name, state.views))
}

func figureWidth(name string, v *analysis.Views) float64 {
	switch name {
	case charts.FileWorldMix:
		return charts.SizeWorldMix.W
	case charts.FileWorldShares:
		return charts.SizeWorldShares.W
	case charts.FileSmallMultiples:
		return charts.SmallMultiplesSize(len(v.Focus.Entities)).W
	case charts.FileRanking:
		return charts.SizeRanking.W
	default:
		return charts.SizeDashboard.W
	}
}

func redrawCharts(state *uiState) {
	if state.views == nil {
		return
	}
	var failed []string
	for _, art := range state.arts {
		c := state.canvases[art.Name]
		img, err := art.Build(state.views, previewDPI(state, art))
		if err != nil {
			logging.Warnf("[viewer] %s: %v", art.Name, err)
			failed = append(failed, art.Name)
			img = placeholder(800, 400)
		}
		c.Image = img
		b := img.Bounds()
		c.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
		c.Refresh()
	}
	if len(failed) > 0 {
		state.status.SetText("Failed to draw: " + strings.Join(failed, ", "))
	}
}

func newRankingTable(state *uiState) *widget.Table {
	headers := []string{"#", "Entity", "Total TWh", "Low-carbon %", "Fossil %"}
	t := widget.NewTable(
		func() (int, int) {
			if state.views == nil {
				return 1, len(headers)
			}
			return len(state.views.Snapshot.Rows) + 1, len(headers)
		},
		func() fyne.CanvasObject { return widget.NewLabel("European Union (27)") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			l := o.(*widget.Label)
			if id.Row == 0 {
				l.TextStyle = fyne.TextStyle{Bold: true}
				l.SetText(headers[id.Col])
				return
			}
			l.TextStyle = fyne.TextStyle{}
			r := state.views.Snapshot.Rows[id.Row-1]
			switch id.Col {
			case 0:
				l.SetText(strconv.Itoa(id.Row))
			case 1:
				l.SetText(r.Entity)
			case 2:
				l.SetText(fmt.Sprintf("%.1f", r.Total))
			case 3:
				l.SetText(fmt.Sprintf("%.1f", r.LowCarbonShare))
			case 4:
				l.SetText(fmt.Sprintf("%.1f", r.FossilShare))
			}
		},
	)
	t.SetColumnWidth(1, 220)
	return t
}

// exportCurrentChart saves the figure of the selected tab at the configured print resolution.
func exportCurrentChart(state *uiState) {
	idx := state.tabs.SelectedIndex()
	if state.views == nil || idx < 0 || idx >= len(state.arts) {
		dialog.ShowInformation("Export", "No chart to export.", state.window)
		return
	}
	art := state.arts[idx]
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		img, err := art.Build(state.views, state.cfg.DPI)
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if err := png.Encode(wc, img); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(art.Name)
	fs.Show()
}

// exportAllFigures writes the full set into a chosen folder, like the command-line run.
func exportAllFigures(state *uiState) {
	if state.views == nil {
		dialog.ShowInformation("Export", "Nothing loaded.", state.window)
		return
	}
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			return
		}
		rep := charts.Render(state.views, charts.Options{OutDir: dir.Path(), DPI: state.cfg.DPI, Parallel: state.cfg.Parallel})
		if err := rep.Err(); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		dialog.ShowInformation("Export", fmt.Sprintf("Wrote %d figures to %s", len(rep.Results), dir.Path()), state.window)
	}, state.window)
}

func placeholder(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 235, G: 235, B: 235, A: 255})
		}
	}
	return img
}
