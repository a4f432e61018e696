package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/shieldball/internal/arena"
	"github.com/banshee-data/shieldball/internal/occlusion"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

// glyph is one composed terminal cell.
type glyph struct {
	r  rune
	fg tcell.Color
	bg tcell.Color
}

// viewport maps world coordinates onto a w×h block of terminal cells.
type viewport struct {
	cols, rows int
	scale      float64 // world units per cell column
}

func newViewport(worldW, worldH float64, cols, rows int) viewport {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	scale := math.Max(worldW/float64(cols), worldH/(float64(rows)*cellAspect))
	if scale <= 0 {
		scale = 1
	}
	return viewport{cols: cols, rows: rows, scale: scale}
}

// center returns the world point at the middle of cell (x, y).
func (v viewport) center(x, y int) r2.Vec {
	return r2.Vec{
		X: (float64(x) + 0.5) * v.scale,
		Y: (float64(y) + 0.5) * v.scale * cellAspect,
	}
}

// cell returns the terminal cell covering world point p.
func (v viewport) cell(p r2.Vec) (x, y int, ok bool) {
	x = int(math.Floor(p.X / v.scale))
	y = int(math.Floor(p.Y / (v.scale * cellAspect)))
	return x, y, x >= 0 && y >= 0 && x < v.cols && y < v.rows
}

func rgb(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

func stateColor(s occlusion.State) tcell.Color {
	switch s {
	case occlusion.Shielded:
		return tcell.ColorBlue
	case occlusion.Exposed:
		return tcell.ColorGreen
	}
	return tcell.ColorYellow
}

// compose lays out the arena into a cols×rows grid of glyphs. Barriers
// come from the session raster, so the picture is the one the pixel
// classifier samples.
func compose(sess *arena.Session, rep arena.TickReport, cols, rows int) [][]glyph {
	img := sess.Raster().Image()
	b := img.Bounds()
	vp := newViewport(float64(b.Dx()), float64(b.Dy()), cols, rows)
	bg := rgb(arena.Background)

	out := make([][]glyph, rows)
	for y := range out {
		out[y] = make([]glyph, cols)
		for x := range out[y] {
			g := glyph{r: ' ', fg: tcell.ColorDefault, bg: bg}
			p := vp.center(x, y)
			px, py := int(p.X), int(p.Y)
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				g.bg = rgb(img.RGBAAt(px, py))
			}
			out[y][x] = g
		}
	}

	put := func(p r2.Vec, r rune, fg tcell.Color) {
		if x, y, ok := vp.cell(p); ok {
			out[y][x].r = r
			out[y][x].fg = fg
		}
	}

	snap := sess.Snapshot()
	for _, p := range snap.Exposed.Points() {
		put(p, '+', tcell.ColorGray)
	}
	for _, p := range snap.Shielded.Points() {
		put(p, '·', tcell.ColorWhite)
	}
	if rep.HasTarget {
		put(rep.Target.Pos, 'x', tcell.ColorRed)
	}
	put(rep.Pos, 'O', stateColor(rep.Result.Final))
	return out
}

func statusLine(sess *arena.Session, rep arena.TickReport) string {
	st := sess.Stats()
	mode := "running"
	if sess.Paused() {
		mode = "paused"
	}
	return fmt.Sprintf(" %s | phase=%s final=%s (math=%s pixel=%s) tf=%.2f df=%.2f | shots=%d hits=%d blocked=%d | p pause, space shoot, esc quit",
		mode, rep.Phase, rep.Result.Final, rep.Result.Math, rep.Result.Pixel,
		rep.TimeFactor, rep.DistanceFactor, st.Shots, st.Hits, st.Blocked)
}

// viewer owns the screen and the session for the duration of a run.
type viewer struct {
	screen tcell.Screen
	sess   *arena.Session
	last   arena.TickReport
	vp     viewport
}

func newViewer(screen tcell.Screen, sess *arena.Session) *viewer {
	return &viewer{screen: screen, sess: sess}
}

// step advances the session one frame and redraws.
func (v *viewer) step() {
	v.last = v.sess.Tick()
	v.draw()
}

func (v *viewer) draw() {
	w, h := v.screen.Size()
	rows := h - 1
	if rows < 1 {
		rows = 1
	}
	b := v.sess.Raster().Bounds()
	v.vp = newViewport(float64(b.Dx()), float64(b.Dy()), w, rows)

	v.screen.Clear()
	for y, line := range compose(v.sess, v.last, w, rows) {
		for x, g := range line {
			v.screen.SetContent(x, y, g.r, nil, tcell.StyleDefault.Foreground(g.fg).Background(g.bg))
		}
	}
	style := tcell.StyleDefault.Reverse(true)
	for x, r := range []rune(statusLine(v.sess, v.last)) {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, style)
	}
	v.screen.Show()
}

// handleKey applies a key press and reports whether the viewer should quit.
func (v *viewer) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch r {
		case 'q':
			return true
		case 'p':
			if v.sess.Paused() {
				v.sess.Resume()
			} else {
				v.sess.Pause()
			}
		case ' ':
			v.shoot(v.sess.Position())
		}
	}
	return false
}

// handleClick shoots at the world point under terminal cell (x, y).
func (v *viewer) handleClick(x, y int) arena.ShotResult {
	return v.shoot(v.vp.center(x, y))
}

func (v *viewer) shoot(p r2.Vec) arena.ShotResult {
	return v.sess.Shoot(p, v.sess.BallRadius()/2)
}
