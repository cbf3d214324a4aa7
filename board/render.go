package board

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"iter"
	"math"

	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/vec"

	"github.com/Tk21111/journal_board/config"
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Surface is the raster the board is painted on. Stroke coordinates are
// logical pixels; the backing image is scaled by the device pixel ratio.
type Surface struct {
	w, h float64
	dpr  float64
	img  *image.RGBA

	raster  *vector.Rasterizer
	maskBuf []byte
}

func NewSurface(w, h, dpr float64) *Surface {
	s := &Surface{raster: vector.NewRasterizer(0, 0)}
	s.Resize(w, h, dpr)
	return s
}

// Resize reallocates the backing image blank. The caller redraws.
func (s *Surface) Resize(w, h, dpr float64) {
	s.w = logicalSize(w)
	s.h = logicalSize(h)
	s.dpr = max(1, min(2, dpr))
	if math.IsNaN(dpr) {
		s.dpr = 1
	}
	s.img = image.NewRGBA(image.Rect(0, 0, int(math.Floor(s.w*s.dpr)), int(math.Floor(s.h*s.dpr))))
}

// logicalSize maps NaN, infinities and anything below 1 to 1.
func logicalSize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 {
		return 1
	}
	return v
}

func (s *Surface) Size() (w, h float64) { return s.w, s.h }

func (s *Surface) DPR() float64 { return s.dpr }

func (s *Surface) Image() *image.RGBA { return s.img }

func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Redraw clears and replays every stroke oldest first, segment by segment,
// exactly as the incremental path painted them.
func (s *Surface) Redraw(strokes iter.Seq[*Stroke]) {
	s.Clear()
	for st := range strokes {
		for a, b := range st.Segments() {
			s.DrawSegment(st.Style, a, b)
		}
	}
}

// DrawPolyline paints pts as consecutive segments. Fewer than two points
// paint nothing.
func (s *Surface) DrawPolyline(style Style, pts []config.Point) {
	for i := 1; i < len(pts); i++ {
		s.DrawSegment(style, pts[i-1], pts[i])
	}
}

// DrawSegment paints one round-capped segment, touching only its bounding
// box.
func (s *Surface) DrawSegment(style Style, a, b config.Point) {
	style = style.normalized()
	if !finite(a) || !finite(b) {
		return
	}

	pa := vec.Vec2{X: a.X() * s.dpr, Y: a.Y() * s.dpr}
	pb := vec.Vec2{X: b.X() * s.dpr, Y: b.Y() * s.dpr}
	r := style.Size * s.dpr / 2

	box, ok := s.bounds(pa, pb, r)
	if !ok {
		return
	}
	mask := s.coverage(box, pa, pb, r)

	if style.Mode == config.ModeEraser {
		s.eraseMask(box, mask)
		return
	}
	src := image.NewUniform(ParseColor(style.Color))
	draw.DrawMask(s.img, box, src, image.Point{}, mask, image.Point{}, draw.Over)
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

// bounds is the device pixel box covering the capsule, clipped to the
// image.
func (s *Surface) bounds(a, b vec.Vec2, r float64) (image.Rectangle, bool) {
	size := s.img.Bounds().Size()
	x0 := clampF(math.Floor(min(a.X, b.X)-r-1), 0, float64(size.X))
	y0 := clampF(math.Floor(min(a.Y, b.Y)-r-1), 0, float64(size.Y))
	x1 := clampF(math.Ceil(max(a.X, b.X)+r+1), 0, float64(size.X))
	y1 := clampF(math.Ceil(max(a.Y, b.Y)+r+1), 0, float64(size.Y))

	box := image.Rect(int(x0), int(y0), int(x1), int(y1))
	return box, !box.Empty()
}

// coverage rasterises the capsule around a-b into a mask whose origin is
// box.Min. The outline is one convex contour so overlapping caps never
// cancel.
func (s *Surface) coverage(box image.Rectangle, a, b vec.Vec2, r float64) *image.Alpha {
	w, h := box.Dx(), box.Dy()
	if cap(s.maskBuf) < w*h {
		s.maskBuf = make([]byte, w*h)
	}
	mask := &image.Alpha{Pix: s.maskBuf[:w*h], Stride: w, Rect: image.Rect(0, 0, w, h)}

	origin := vec.Vec2{X: float64(box.Min.X), Y: float64(box.Min.Y)}
	a, b = a.Sub(origin), b.Sub(origin)

	t := vec.Vec2{X: 1, Y: 0}
	if d := b.Sub(a); d.Length() > 1e-9 {
		t = d.Mul(1 / d.Length())
	}
	n := vec.Vec2{X: -t.Y, Y: t.X}
	tr, nr := t.Mul(r), n.Mul(r)
	tk, nk := t.Mul(r*kappa), n.Mul(r*kappa)

	z := s.raster
	z.Reset(w, h)
	z.DrawOp = draw.Src

	moveTo(z, a.Add(nr))
	lineTo(z, b.Add(nr))
	cubeTo(z, b.Add(nr).Add(tk), b.Add(tr).Add(nk), b.Add(tr))
	cubeTo(z, b.Add(tr).Sub(nk), b.Sub(nr).Add(tk), b.Sub(nr))
	lineTo(z, a.Sub(nr))
	cubeTo(z, a.Sub(nr).Sub(tk), a.Sub(tr).Sub(nk), a.Sub(tr))
	cubeTo(z, a.Sub(tr).Add(nk), a.Add(nr).Sub(tk), a.Add(nr))
	z.ClosePath()

	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

// eraseMask is destination-out: every covered pixel keeps 1-coverage of
// itself. Pixels outside the mask are left alone.
func (s *Surface) eraseMask(box image.Rectangle, mask *image.Alpha) {
	for y := box.Min.Y; y < box.Max.Y; y++ {
		row := s.img.PixOffset(box.Min.X, y)
		mrow := mask.PixOffset(0, y-box.Min.Y)
		for x := 0; x < box.Dx(); x++ {
			m := uint32(mask.Pix[mrow+x])
			if m == 0 {
				continue
			}
			keep := 255 - m
			px := s.img.Pix[row+4*x : row+4*x+4 : row+4*x+4]
			for i := range px {
				px[i] = uint8((uint32(px[i])*keep + 127) / 255)
			}
		}
	}
}

// At reports the logical pixel colour, for tests and pickers.
func (s *Surface) At(x, y float64) color.RGBA {
	return s.img.RGBAAt(int(x*s.dpr), int(y*s.dpr))
}

func moveTo(z *vector.Rasterizer, p vec.Vec2) { z.MoveTo(float32(p.X), float32(p.Y)) }

func lineTo(z *vector.Rasterizer, p vec.Vec2) { z.LineTo(float32(p.X), float32(p.Y)) }

func cubeTo(z *vector.Rasterizer, c1, c2, p vec.Vec2) {
	z.CubeTo(float32(c1.X), float32(c1.Y), float32(c2.X), float32(c2.Y), float32(p.X), float32(p.Y))
}

func finite(p config.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clampF(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
