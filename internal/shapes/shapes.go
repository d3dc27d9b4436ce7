package shapes

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimension reports a parameter that is non-positive or not finite.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrDegenerateShape reports triangle sides that violate the triangle inequality.
	ErrDegenerateShape = errors.New("degenerate shape")
)

// Shape is a parameterized shape variant. The set of variants is closed.
type Shape interface {
	// Kind returns the variant's kind.
	Kind() Kind

	// Params returns the positional parameters in ParamNames order.
	Params() []Param

	compute() (Result, error)
}

// Param is a named numeric parameter.
type Param struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Result holds the metrics of one computation.
//
// 2D results fill Area and Perimeter. 3D results fill Volume and SurfaceArea.
type Result struct {
	Kind        Kind      `json:"shape"`
	Dimension   Dimension `json:"dimension"`
	Params      []Param   `json:"params"`
	Area        float64   `json:"area,omitempty"`
	Perimeter   float64   `json:"perimeter,omitempty"`
	Volume      float64   `json:"volume,omitempty"`
	SurfaceArea float64   `json:"surface_area,omitempty"`
}

// ParamMap returns the parameters keyed by name.
func (r Result) ParamMap() map[string]float64 {
	m := make(map[string]float64, len(r.Params))
	for _, p := range r.Params {
		m[p.Name] = p.Value
	}
	return m
}

// Compute validates the shape and returns its metrics.
func Compute(s Shape) (Result, error) {
	if s == nil {
		return Result{}, fmt.Errorf("%w: no shape given", ErrInvalidDimension)
	}
	for _, p := range s.Params() {
		if err := checkPositive(p); err != nil {
			return Result{}, err
		}
	}
	res, err := s.compute()
	if err != nil {
		return Result{}, err
	}
	for _, v := range []float64{res.Area, res.Perimeter, res.Volume, res.SurfaceArea} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return Result{}, fmt.Errorf("%w: result overflows for %s", ErrInvalidDimension, s.Kind())
		}
	}
	res.Kind = s.Kind()
	res.Dimension = s.Kind().Dimension()
	res.Params = s.Params()
	return res, nil
}

// New builds a shape of the given kind from positional values.
func New(kind Kind, values ...float64) (Shape, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported shape kind %d", int(kind))
	}
	if want := len(kindParams[kind]); len(values) != want {
		return nil, fmt.Errorf("%s takes %d values (%v), got %d",
			kind, want, kindParams[kind], len(values))
	}

	v := values
	switch kind {
	case KindRectangle:
		return Rectangle{Length: v[0], Width: v[1]}, nil
	case KindSquare:
		return Square{Side: v[0]}, nil
	case KindCircle:
		return Circle{Radius: v[0]}, nil
	case KindTriangle:
		return Triangle{A: v[0], B: v[1], C: v[2]}, nil
	case KindCube:
		return Cube{Side: v[0]}, nil
	case KindRectangularPrism:
		return RectangularPrism{Length: v[0], Width: v[1], Height: v[2]}, nil
	case KindSphere:
		return Sphere{Radius: v[0]}, nil
	case KindTriangularPrism:
		return TriangularPrism{A: v[0], B: v[1], C: v[2], Height: v[3]}, nil
	}
	return nil, fmt.Errorf("unsupported shape kind %d", int(kind))
}

func checkPositive(p Param) error {
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidDimension, p.Name, p.Value)
	}
	if p.Value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidDimension, p.Name, p.Value)
	}
	return nil
}

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	Length, Width float64
}

func (Rectangle) Kind() Kind { return KindRectangle }

func (r Rectangle) Params() []Param {
	return []Param{{"length", r.Length}, {"width", r.Width}}
}

func (r Rectangle) compute() (Result, error) {
	return Result{
		Area:      r.Length * r.Width,
		Perimeter: 2 * (r.Length + r.Width),
	}, nil
}

// Square is a rectangle with equal sides.
type Square struct {
	Side float64
}

func (Square) Kind() Kind { return KindSquare }

func (s Square) Params() []Param { return []Param{{"side", s.Side}} }

func (s Square) compute() (Result, error) {
	return Result{
		Area:      s.Side * s.Side,
		Perimeter: 4 * s.Side,
	}, nil
}

// Circle is given by its radius.
type Circle struct {
	Radius float64
}

func (Circle) Kind() Kind { return KindCircle }

func (c Circle) Params() []Param { return []Param{{"radius", c.Radius}} }

func (c Circle) compute() (Result, error) {
	return Result{
		Area:      math.Pi * c.Radius * c.Radius,
		Perimeter: 2 * math.Pi * c.Radius,
	}, nil
}

// Triangle is given by its three side lengths.
type Triangle struct {
	A, B, C float64
}

func (Triangle) Kind() Kind { return KindTriangle }

func (t Triangle) Params() []Param {
	return []Param{{"a", t.A}, {"b", t.B}, {"c", t.C}}
}

func (t Triangle) compute() (Result, error) {
	area, err := heron(t.A, t.B, t.C)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Area:      area,
		Perimeter: t.A + t.B + t.C,
	}, nil
}

// Cube is given by its edge length.
type Cube struct {
	Side float64
}

func (Cube) Kind() Kind { return KindCube }

func (c Cube) Params() []Param { return []Param{{"side", c.Side}} }

func (c Cube) compute() (Result, error) {
	return Result{
		Volume:      math.Pow(c.Side, 3),
		SurfaceArea: 6 * math.Pow(c.Side, 2),
	}, nil
}

// RectangularPrism is a box.
type RectangularPrism struct {
	Length, Width, Height float64
}

func (RectangularPrism) Kind() Kind { return KindRectangularPrism }

func (p RectangularPrism) Params() []Param {
	return []Param{{"length", p.Length}, {"width", p.Width}, {"height", p.Height}}
}

func (p RectangularPrism) compute() (Result, error) {
	l, w, h := p.Length, p.Width, p.Height
	return Result{
		Volume:      l * w * h,
		SurfaceArea: 2 * (l*w + l*h + w*h),
	}, nil
}

// Sphere is given by its radius.
type Sphere struct {
	Radius float64
}

func (Sphere) Kind() Kind { return KindSphere }

func (s Sphere) Params() []Param { return []Param{{"radius", s.Radius}} }

func (s Sphere) compute() (Result, error) {
	return Result{
		Volume:      (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3),
		SurfaceArea: 4 * math.Pi * math.Pow(s.Radius, 2),
	}, nil
}

// TriangularPrism is a right prism over a triangular base.
type TriangularPrism struct {
	A, B, C, Height float64
}

func (TriangularPrism) Kind() Kind { return KindTriangularPrism }

func (p TriangularPrism) Params() []Param {
	return []Param{{"a", p.A}, {"b", p.B}, {"c", p.C}, {"height", p.Height}}
}

func (p TriangularPrism) compute() (Result, error) {
	base, err := heron(p.A, p.B, p.C)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Volume:      base * p.Height,
		SurfaceArea: 2*base + (p.A+p.B+p.C)*p.Height,
	}, nil
}

// ValidTriangle reports whether a, b, c satisfy the strict triangle inequality.
func ValidTriangle(a, b, c float64) bool {
	return a+b > c && a+c > b && b+c > a
}

// heron returns the area of the triangle with sides a, b, c.
func heron(a, b, c float64) (float64, error) {
	if !ValidTriangle(a, b, c) {
		return 0, fmt.Errorf("%w: sides %g, %g, %g violate the triangle inequality", ErrDegenerateShape, a, b, c)
	}
	s := (a + b + c) / 2
	return math.Sqrt(s * (s - a) * (s - b) * (s - c)), nil
}
