package shapes

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangle(t *testing.T) {
	for _, tt := range []struct{ l, w float64 }{{2, 3}, {0.5, 10}, {7.25, 7.25}} {
		res, err := Compute(Rectangle{Length: tt.l, Width: tt.w})
		require.NoError(t, err)
		assert.Equal(t, tt.l*tt.w, res.Area)
		assert.Equal(t, 2*(tt.l+tt.w), res.Perimeter)
		assert.Equal(t, TwoD, res.Dimension)
		assert.Equal(t, KindRectangle, res.Kind)
	}
}

func TestSquare(t *testing.T) {
	res, err := Compute(Square{Side: 4})
	require.NoError(t, err)
	assert.Equal(t, 16.0, res.Area)
	assert.Equal(t, 16.0, res.Perimeter)
}

func TestCircleAreaRatioIsPi(t *testing.T) {
	for _, r := range []float64{0.1, 1, 2.5, 100} {
		res, err := Compute(Circle{Radius: r})
		require.NoError(t, err)
		assert.InDelta(t, math.Pi, res.Area/(r*r), 1e-12)
		assert.InDelta(t, 2*math.Pi*r, res.Perimeter, 1e-12)
	}
}

func TestTriangle(t *testing.T) {
	res, err := Compute(Triangle{A: 3, B: 4, C: 5})
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Area)
	assert.Equal(t, 12.0, res.Perimeter)
}

func TestTriangleDegenerate(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c float64
	}{
		{"too long c", 1, 1, 5},
		{"too long a", 5, 1, 1},
		{"flat", 1, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(Triangle{A: tt.a, B: tt.b, C: tt.c})
			assert.ErrorIs(t, err, ErrDegenerateShape)
		})
	}
}

func TestInvalidDimension(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
	}{
		{"zero width", Rectangle{Length: 2, Width: 0}},
		{"negative side", Square{Side: -1}},
		{"zero radius", Circle{Radius: 0}},
		{"negative triangle side", Triangle{A: -3, B: 4, C: 5}},
		{"cube", Cube{Side: 0}},
		{"box height", RectangularPrism{Length: 1, Width: 1, Height: -2}},
		{"sphere NaN", Sphere{Radius: math.NaN()}},
		{"prism inf", TriangularPrism{A: 3, B: 4, C: 5, Height: math.Inf(1)}},
		{"area overflows", Rectangle{Length: 1e200, Width: 1e200}},
		{"volume overflows", Cube{Side: 1e150}},
		{"heron overflows", Triangle{A: 1e200, B: 1e200, C: 1e200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.shape)
			assert.ErrorIs(t, err, ErrInvalidDimension)
			assert.False(t, errors.Is(err, ErrDegenerateShape))
		})
	}
}

func TestSolids(t *testing.T) {
	cube, err := Compute(Cube{Side: 3})
	require.NoError(t, err)
	assert.Equal(t, 27.0, cube.Volume)
	assert.Equal(t, 54.0, cube.SurfaceArea)
	assert.Equal(t, ThreeD, cube.Dimension)

	box, err := Compute(RectangularPrism{Length: 2, Width: 3, Height: 4})
	require.NoError(t, err)
	assert.Equal(t, 24.0, box.Volume)
	assert.Equal(t, 52.0, box.SurfaceArea)

	r := 1.5
	sphere, err := Compute(Sphere{Radius: r})
	require.NoError(t, err)
	assert.Equal(t, (4.0/3.0)*math.Pi*math.Pow(r, 3), sphere.Volume)
	assert.Equal(t, 4*math.Pi*math.Pow(r, 2), sphere.SurfaceArea)

	prism, err := Compute(TriangularPrism{A: 3, B: 4, C: 5, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 60.0, prism.Volume)
	assert.Equal(t, 2*6.0+12*10.0, prism.SurfaceArea)

	_, err = Compute(TriangularPrism{A: 1, B: 1, C: 5, Height: 2})
	assert.ErrorIs(t, err, ErrDegenerateShape)
}

func TestComputeIsDeterministic(t *testing.T) {
	for _, kind := range Kinds() {
		values := make([]float64, len(kind.ParamNames()))
		for i := range values {
			values[i] = 3.3 + float64(i)*0.7
		}
		s, err := New(kind, values...)
		require.NoError(t, err)

		first, err := Compute(s)
		require.NoError(t, err, kind.String())
		second, err := Compute(s)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(first.Area), math.Float64bits(second.Area))
		assert.Equal(t, math.Float64bits(first.Volume), math.Float64bits(second.Volume))
		assert.Equal(t, first, second)
	}
}

func TestNew(t *testing.T) {
	s, err := New(KindTriangularPrism, 3, 4, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, TriangularPrism{A: 3, B: 4, C: 5, Height: 2}, s)

	_, err = New(KindRectangle, 1)
	assert.Error(t, err)

	_, err = New(KindUnknown)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"rectangle":         KindRectangle,
		"Circle":            KindCircle,
		"rectangular-prism": KindRectangularPrism,
		"triangular prism":  KindTriangularPrism,
		"box":               KindRectangularPrism,
		"prism":             KindTriangularPrism,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("hexagon")
	assert.Error(t, err)
}

func TestKindMetadata(t *testing.T) {
	assert.Len(t, Kinds(), 8)
	assert.Equal(t, "n/a", KindUnknown.String())
	assert.Equal(t, "Rectangular prism", KindRectangularPrism.Title())
	assert.Equal(t, []string{"a", "b", "c", "height"}, KindTriangularPrism.ParamNames())

	twoD, threeD := 0, 0
	for _, k := range Kinds() {
		switch k.Dimension() {
		case TwoD:
			twoD++
		case ThreeD:
			threeD++
		}
	}
	assert.Equal(t, 4, twoD)
	assert.Equal(t, 4, threeD)

	d, err := ParseDimension("ThreeD")
	require.NoError(t, err)
	assert.Equal(t, ThreeD, d)
}
