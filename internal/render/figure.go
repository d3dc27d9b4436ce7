/*
Package render describes shapes as plain numeric figures.

A Figure lists outlines, faces, circles and spheres in model coordinates plus
suggested axis bounds and a title. Drawing it is left to a Renderer; this
package never touches pixels.
*/
package render

import (
	"fmt"
	"math"

	"github.com/khanglvm/geocalc/internal/shapes"
)

// Point is a position in model space. Z is zero for planar figures.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Circle is a circle in the XY plane, or a sphere in 3D figures.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Segment is a straight line between two points.
type Segment struct {
	From   Point `json:"from"`
	To     Point `json:"to"`
	Dashed bool  `json:"dashed,omitempty"`
}

// Label places text at a point.
type Label struct {
	Text string `json:"text"`
	At   Point  `json:"at"`
}

// Bounds are the suggested axis limits.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Figure is the numeric description handed to a Renderer.
type Figure struct {
	Shape     shapes.Kind      `json:"shape"`
	Dimension shapes.Dimension `json:"dimension"`
	Title     string           `json:"title"`
	Color     string           `json:"color"`

	// Polygons holds the 2D outline or the faces of a polyhedron.
	Polygons [][]Point `json:"polygons,omitempty"`
	Circles  []Circle  `json:"circles,omitempty"`
	Spheres  []Circle  `json:"spheres,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Labels   []Label   `json:"labels,omitempty"`
	Bounds   Bounds    `json:"bounds"`
}

// Describe builds the figure of a computed result.
func Describe(res shapes.Result) (Figure, error) {
	p := res.ParamMap()
	fig := Figure{Shape: res.Kind, Dimension: res.Dimension}

	switch res.Kind {
	case shapes.KindRectangle:
		describeRectangle(&fig, p["length"], p["width"], 0.3)
		fig.Color = "blue"
		fig.Title = fmt.Sprintf("Rectangle %gx%g\n%s", p["length"], p["width"], planarSummary(res))
	case shapes.KindSquare:
		describeRectangle(&fig, p["side"], p["side"], 0.3)
		fig.Color = "green"
		fig.Title = fmt.Sprintf("Square with side %g\n%s", p["side"], planarSummary(res))
	case shapes.KindCircle:
		describeCircle(&fig, p["radius"])
		fig.Color = "red"
		fig.Title = fmt.Sprintf("Circle with radius %g\n%s", p["radius"], planarSummary(res))
	case shapes.KindTriangle:
		a, b, c := p["a"], p["b"], p["c"]
		if err := describeTriangle(&fig, a, b, c); err != nil {
			return Figure{}, err
		}
		fig.Color = "purple"
		fig.Title = fmt.Sprintf("Triangle %g-%g-%g\n%s", a, b, c, planarSummary(res))
	case shapes.KindCube:
		s := p["side"]
		describeBox(&fig, s, s, s)
		fig.Bounds = symmetricBounds(s, s, s)
		fig.Color = "green"
		fig.Title = fmt.Sprintf("Cube with side %g\n%s", s, solidSummary(res))
	case shapes.KindRectangularPrism:
		l, w, h := p["length"], p["width"], p["height"]
		describeBox(&fig, l, w, h)
		m := math.Max(l, math.Max(w, h))
		fig.Bounds = symmetricBounds(m, m, m)
		fig.Color = "red"
		fig.Title = fmt.Sprintf("Rectangular prism %gx%gx%g\n%s", l, w, h, solidSummary(res))
	case shapes.KindSphere:
		r := p["radius"]
		fig.Spheres = []Circle{{Radius: r}}
		fig.Labels = []Label{{Text: "O"}}
		fig.Bounds = symmetricBounds(1.2*r, 1.2*r, 1.2*r)
		fig.Color = "red"
		fig.Title = fmt.Sprintf("Sphere with radius %g\n%s", r, solidSummary(res))
	case shapes.KindTriangularPrism:
		a, b, c, h := p["a"], p["b"], p["c"], p["height"]
		if err := describePrism(&fig, a, b, c, h); err != nil {
			return Figure{}, err
		}
		fig.Color = "pink"
		fig.Title = fmt.Sprintf("Triangular prism\nBase: %g-%g-%g, Height: %g\n%s", a, b, c, h, solidSummary(res))
	default:
		return Figure{}, fmt.Errorf("cannot describe shape %s", res.Kind)
	}

	return fig, nil
}

func planarSummary(res shapes.Result) string {
	return fmt.Sprintf("Area: %.3f | Perimeter: %.3f", res.Area, res.Perimeter)
}

func solidSummary(res shapes.Result) string {
	return fmt.Sprintf("Volume: %.3f | Surface area: %.3f", res.Volume, res.SurfaceArea)
}

// describeRectangle centers an l x w rectangle on the origin.
func describeRectangle(fig *Figure, l, w, padding float64) {
	x, y := -l/2, -w/2
	fig.Polygons = [][]Point{{
		{X: x, Y: y}, {X: x + l, Y: y}, {X: x + l, Y: y + w}, {X: x, Y: y + w},
	}}
	pad := math.Max(l, w) * padding
	fig.Bounds = Bounds{
		Min: Point{X: x - pad, Y: y - pad},
		Max: Point{X: x + l + pad, Y: y + w + pad},
	}
}

func describeCircle(fig *Figure, r float64) {
	fig.Circles = []Circle{{Radius: r}}
	fig.Segments = []Segment{{To: Point{X: r}, Dashed: true}}
	fig.Labels = []Label{{Text: "O"}}
	pad := r * 0.3
	fig.Bounds = Bounds{
		Min: Point{X: -r - pad, Y: -r - pad},
		Max: Point{X: r + pad, Y: r + pad},
	}
}

// TriangleVertices places side c on the X axis from A to B; C lies above it
// with |AC| = b and |BC| = a.
func TriangleVertices(a, b, c float64) ([3]Point, error) {
	if !shapes.ValidTriangle(a, b, c) {
		return [3]Point{}, fmt.Errorf("%w: sides %g, %g, %g", shapes.ErrDegenerateShape, a, b, c)
	}
	cx := (b*b + c*c - a*a) / (2 * c)
	cy := math.Sqrt(math.Max(b*b-cx*cx, 0))
	return [3]Point{{}, {X: c}, {X: cx, Y: cy}}, nil
}

func describeTriangle(fig *Figure, a, b, c float64) error {
	v, err := TriangleVertices(a, b, c)
	if err != nil {
		return err
	}
	fig.Polygons = [][]Point{{v[0], v[1], v[2]}}

	pad := (a + b + c) / 3 * 0.2
	minX, maxX := math.Min(0, v[2].X), math.Max(v[1].X, v[2].X)
	fig.Bounds = Bounds{
		Min: Point{X: minX - pad, Y: -pad},
		Max: Point{X: maxX + pad, Y: v[2].Y + pad},
	}
	fig.Labels = []Label{
		{Text: "A", At: Point{X: v[0].X - pad/2, Y: v[0].Y - pad/2}},
		{Text: "B", At: Point{X: v[1].X + pad/2, Y: v[1].Y - pad/2}},
		{Text: "C", At: Point{X: v[2].X, Y: v[2].Y + pad/2}},
	}
	return nil
}

// describeBox adds the six faces of an l x w x h box centered on the origin.
func describeBox(fig *Figure, l, w, h float64) {
	x, y, z := l/2, w/2, h/2
	corner := func(sx, sy, sz float64) Point { return Point{X: sx * x, Y: sy * y, Z: sz * z} }

	fig.Polygons = [][]Point{
		{corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1)},
		{corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1)},
		{corner(-1, 1, -1), corner(1, 1, -1), corner(1, 1, 1), corner(-1, 1, 1)},
		{corner(-1, -1, -1), corner(1, -1, -1), corner(1, -1, 1), corner(-1, -1, 1)},
		{corner(1, -1, -1), corner(1, 1, -1), corner(1, 1, 1), corner(1, -1, 1)},
		{corner(-1, -1, -1), corner(-1, 1, -1), corner(-1, 1, 1), corner(-1, -1, 1)},
	}
}

func describePrism(fig *Figure, a, b, c, h float64) error {
	v, err := TriangleVertices(a, b, c)
	if err != nil {
		return err
	}
	lift := func(p Point, z float64) Point { return Point{X: p.X, Y: p.Y, Z: z} }
	bottom := [3]Point{lift(v[0], -h/2), lift(v[1], -h/2), lift(v[2], -h/2)}
	top := [3]Point{lift(v[0], h/2), lift(v[1], h/2), lift(v[2], h/2)}

	fig.Polygons = [][]Point{
		{bottom[0], bottom[1], bottom[2]},
		{top[0], top[1], top[2]},
		{bottom[0], top[0], top[1], bottom[1]},
		{bottom[1], top[1], top[2], bottom[2]},
		{bottom[2], top[2], top[0], bottom[0]},
	}

	minX, maxX := math.Min(0, v[2].X), math.Max(v[1].X, v[2].X)
	pad := math.Max(maxX-minX, math.Max(v[2].Y, h)) * 0.2
	fig.Bounds = Bounds{
		Min: Point{X: minX - pad, Y: -pad, Z: -h/2 - pad},
		Max: Point{X: maxX + pad, Y: v[2].Y + pad, Z: h/2 + pad},
	}
	return nil
}

func symmetricBounds(x, y, z float64) Bounds {
	return Bounds{
		Min: Point{X: -x, Y: -y, Z: -z},
		Max: Point{X: x, Y: y, Z: z},
	}
}
