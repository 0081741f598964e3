package scene

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

const (
	strokeColor = "#ffffff"
	background  = "#000000"
	arrowHead   = 10.0
)

// MarshalSVG draws shapes in order, white strokes on black, the way the
// canvas client paints a room.
func MarshalSVG(shapes []Shape, width, height int) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	fmt.Fprintf(&b, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", background)

	for _, s := range shapes {
		b.WriteString("  ")
		writeShape(&b, s)
		b.WriteByte('\n')
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

func writeShape(w io.Writer, s Shape) {
	switch v := s.(type) {
	case Rectangle:
		x, y, wd, ht := v.X, v.Y, v.Width, v.Height
		// Drags to the left or upwards produce negative sizes.
		if wd < 0 {
			x, wd = x+wd, -wd
		}
		if ht < 0 {
			y, ht = y+ht, -ht
		}
		fmt.Fprintf(w, `<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s"/>`, num(x), num(y), num(wd), num(ht), strokeColor)
	case Circle:
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s"/>`, num(v.CenterX), num(v.CenterY), num(math.Abs(v.Radius)), strokeColor)
	case Polyline:
		pts := make([]string, len(v.Points))
		for i, p := range v.Points {
			pts[i] = num(p.X) + "," + num(p.Y)
		}
		fmt.Fprintf(w, `<polyline points="%s" fill="none" stroke="%s"/>`, strings.Join(pts, " "), strokeColor)
	case LineSegment:
		fmt.Fprintf(w, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s"/>`, num(v.StartX), num(v.StartY), num(v.EndX), num(v.EndY), strokeColor)
	case Arrow:
		angle := math.Atan2(v.EndY-v.StartY, v.EndX-v.StartX)
		lx := v.EndX - arrowHead*math.Cos(angle-math.Pi/6)
		ly := v.EndY - arrowHead*math.Sin(angle-math.Pi/6)
		rx := v.EndX - arrowHead*math.Cos(angle+math.Pi/6)
		ry := v.EndY - arrowHead*math.Sin(angle+math.Pi/6)
		fmt.Fprintf(w, `<g stroke="%s" fill="none"><line x1="%s" y1="%s" x2="%s" y2="%s"/><polyline points="%s,%s %s,%s %s,%s"/></g>`,
			strokeColor, num(v.StartX), num(v.StartY), num(v.EndX), num(v.EndY),
			num(lx), num(ly), num(v.EndX), num(v.EndY), num(rx), num(ry))
	case Text:
		fmt.Fprintf(w, `<text x="%s" y="%s" fill="%s">%s</text>`, num(v.X), num(v.Y), strokeColor, html.EscapeString(v.Text))
	default:
		fmt.Fprintf(w, `<!-- unsupported shape %s -->`, html.EscapeString(string(s.Type())))
	}
}

func num(f float64) string {
	return fmt.Sprintf("%g", math.Round(f*100)/100)
}

// SVGFile rewrites Path with the whole scene on every render.
type SVGFile struct {
	Path   string
	Width  int
	Height int
}

func (f SVGFile) Render(shapes []Shape) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".scene-*.svg")
	if err != nil {
		return fmt.Errorf("create temp svg: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(MarshalSVG(shapes, f.Width, f.Height)); err != nil {
		tmp.Close()
		return fmt.Errorf("write svg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
