package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/inamate/graphpad/internal/document"
	"github.com/inamate/graphpad/internal/engine"
)

// MaxPixels bounds the size of a rendered image.
const MaxPixels = 4096 * 4096

const (
	discSides = 24
	dashOn    = 8.0
	dashOff   = 6.0
	haloScale = 2.0
	haloAlpha = 0.25
)

var ErrBadSize = errors.New("export: image size out of range")

type point struct{ x, y float32 }

type subpath struct {
	pts    []point
	closed bool
}

// Renderer draws commands onto an RGBA image in painter's order.
type Renderer struct {
	dst  *image.RGBA
	z    *vector.Rasterizer
	face font.Face
}

// Render rasterises cmds onto a width x height image filled with
// background.
func Render(cmds []engine.DrawCommand, width, height int, background string) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || width > MaxPixels/height {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadSize, width, height)
	}
	bg, err := ParseColor(document.Color(background, document.ColorBackground))
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		dst:  image.NewRGBA(image.Rect(0, 0, width, height)),
		z:    vector.NewRasterizer(width, height),
		face: basicfont.Face7x13,
	}
	draw.Draw(r.dst, r.dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i := range cmds {
		if err := r.Draw(&cmds[i]); err != nil {
			return nil, fmt.Errorf("command %d (%s %s): %w", i, cmds[i].Op, cmds[i].ObjectID, err)
		}
	}
	return r.dst, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Draw rasterises a single command.
func (r *Renderer) Draw(cmd *engine.DrawCommand) error {
	switch cmd.Op {
	case engine.OpPath:
		return r.path(cmd)
	case engine.OpPoint:
		return r.point(cmd)
	case engine.OpText:
		return r.text(cmd)
	}
	return nil
}

func (r *Renderer) path(cmd *engine.DrawCommand) error {
	paths := subpaths(cmd.Path)

	if cmd.Fill != "" {
		c, err := ParseColor(cmd.Fill)
		if err != nil {
			return err
		}
		r.begin()
		for _, sp := range paths {
			if len(sp.pts) < 3 {
				continue
			}
			r.polygon(sp.pts)
		}
		r.paint(withAlpha(c, opacity(cmd.Opacity)*opacity(cmd.FillOpacity)))
	}

	if cmd.Stroke == "" {
		return nil
	}
	c, err := ParseColor(cmd.Stroke)
	if err != nil {
		return err
	}
	half := float32(cmd.StrokeWidth / 2)
	if half <= 0 {
		half = float32(engine.DefaultWeight / 2)
	}
	r.begin()
	for _, sp := range paths {
		pts := sp.pts
		if sp.closed && len(pts) > 1 {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}
		if cmd.Dashed {
			for _, dash := range dashes(pts) {
				r.polyline(dash, half)
			}
			continue
		}
		r.polyline(pts, half)
	}
	r.paint(withAlpha(c, opacity(cmd.Opacity)))
	return nil
}

func (r *Renderer) point(cmd *engine.DrawCommand) error {
	c, err := ParseColor(cmd.Fill)
	if err != nil {
		return err
	}
	center := point{float32(cmd.X), float32(cmd.Y)}
	radius := float32(cmd.Radius)
	if radius <= 0 {
		radius = engine.PointRadius
	}
	if cmd.Marker == engine.MarkerMovable {
		r.begin()
		r.disc(center, radius*haloScale)
		r.paint(withAlpha(c, opacity(cmd.Opacity)*haloAlpha))
	}
	r.begin()
	r.disc(center, radius)
	r.paint(withAlpha(c, opacity(cmd.Opacity)))
	return nil
}

// text draws with a fixed bitmap face; Size is not honoured.
func (r *Renderer) text(cmd *engine.DrawCommand) error {
	c, err := ParseColor(document.Color(cmd.Fill, document.ColorForeground))
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  r.dst,
		Src:  image.NewUniform(withAlpha(c, opacity(cmd.Opacity))),
		Face: r.face,
	}

	x := fixed.Int26_6(cmd.X * 64)
	switch cmd.Align {
	case "middle":
		x -= d.MeasureString(cmd.Text) / 2
	case "end":
		x -= d.MeasureString(cmd.Text)
	}

	m := r.face.Metrics()
	y := fixed.Int26_6(cmd.Y * 64)
	switch cmd.Baseline {
	case "hanging":
		y += m.Ascent
	case "middle":
		y += (m.Ascent - m.Descent) / 2
	}

	d.Dot = fixed.Point26_6{X: x, Y: y}
	d.DrawString(cmd.Text)
	return nil
}

func (r *Renderer) begin() {
	b := r.dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over
}

func (r *Renderer) paint(c color.NRGBA) {
	r.z.Draw(r.dst, r.dst.Bounds(), image.NewUniform(c), image.Point{})
}

func (r *Renderer) polygon(pts []point) {
	r.z.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		r.z.LineTo(p.x, p.y)
	}
	r.z.ClosePath()
}

// polyline outlines each segment as a quad and covers the joints with
// discs. Overlaps accumulate in one coverage pass so they do not darken.
func (r *Renderer) polyline(pts []point, half float32) {
	for i := 1; i < len(pts); i++ {
		r.quad(pts[i-1], pts[i], half)
		if i < len(pts)-1 {
			r.disc(pts[i], half)
		}
	}
}

func (r *Renderer) quad(a, b point, half float32) {
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*half, dx/l*half
	r.polygon([]point{
		{a.x + nx, a.y + ny},
		{b.x + nx, b.y + ny},
		{b.x - nx, b.y - ny},
		{a.x - nx, a.y - ny},
	})
}

func (r *Renderer) disc(c point, radius float32) {
	pts := make([]point, discSides)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / discSides
		pts[i] = point{c.x + radius*float32(math.Cos(a)), c.y + radius*float32(math.Sin(a))}
	}
	r.polygon(pts)
}

// subpaths splits path commands at every M. Non-finite coordinates end
// the current subpath.
func subpaths(cmds []engine.PathCommand) []subpath {
	var (
		out []subpath
		cur *subpath
	)
	flush := func() {
		if cur != nil && len(cur.pts) > 0 {
			out = append(out, *cur)
		}
		cur = nil
	}
	for _, c := range cmds {
		if len(c) == 0 {
			continue
		}
		op, _ := c[0].(string)
		switch op {
		case "M", "L":
			p, ok := coords(c)
			if !ok {
				flush()
				continue
			}
			if op == "M" || cur == nil {
				flush()
				cur = &subpath{}
			}
			cur.pts = append(cur.pts, p)
		case "Z":
			if cur != nil {
				cur.closed = true
			}
			flush()
		}
	}
	flush()
	return out
}

func coords(c engine.PathCommand) (point, bool) {
	if len(c) < 3 {
		return point{}, false
	}
	x, okx := number(c[1])
	y, oky := number(c[2])
	if !okx || !oky || math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return point{}, false
	}
	return point{float32(x), float32(y)}, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// dashes cuts a polyline into alternating on/off pieces and returns the
// on pieces.
func dashes(pts []point) [][]point {
	var (
		out  [][]point
		cur  []point
		on   = true
		left = float32(dashOn)
	)
	if len(pts) > 0 {
		cur = []point{pts[0]}
	}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		seg := float32(math.Hypot(float64(b.x-a.x), float64(b.y-a.y)))
		pos := float32(0)
		for seg-pos > left {
			pos += left
			t := pos / seg
			p := point{a.x + (b.x-a.x)*t, a.y + (b.y-a.y)*t}
			if on {
				out = append(out, append(cur, p))
				cur = nil
				left = dashOff
			} else {
				cur = []point{p}
				left = dashOn
			}
			on = !on
		}
		left -= seg - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func opacity(a float64) float64 {
	if a <= 0 {
		return 1
	}
	return a
}
