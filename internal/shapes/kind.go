/*
Package shapes implements the closed-form metrics of the supported shapes.

Each shape kind is a struct variant of the sealed Shape interface:

	2D: Rectangle, Square, Circle, Triangle       -> area, perimeter
	3D: Cube, RectangularPrism, Sphere,
	    TriangularPrism                           -> volume, surface area

All computations are pure and safe for concurrent use.
*/
package shapes

import (
	"fmt"
	"strings"
)

// Kind identifies one of the supported shapes.
type Kind int

const (
	// KindUnknown is the zero value, used as the "not applicable" sentinel.
	KindUnknown Kind = iota
	KindRectangle
	KindSquare
	KindCircle
	KindTriangle
	KindCube
	KindRectangularPrism
	KindSphere
	KindTriangularPrism
)

var kindNames = map[Kind]string{
	KindRectangle:        "rectangle",
	KindSquare:           "square",
	KindCircle:           "circle",
	KindTriangle:         "triangle",
	KindCube:             "cube",
	KindRectangularPrism: "rectangular_prism",
	KindSphere:           "sphere",
	KindTriangularPrism:  "triangular_prism",
}

// kindAliases maps alternative spellings accepted on input.
var kindAliases = map[string]Kind{
	"rect":             KindRectangle,
	"tri":              KindTriangle,
	"box":              KindRectangularPrism,
	"cuboid":           KindRectangularPrism,
	"rectangularprism": KindRectangularPrism,
	"ball":             KindSphere,
	"prism":            KindTriangularPrism,
	"triangularprism":  KindTriangularPrism,
}

var kindParams = map[Kind][]string{
	KindRectangle:        {"length", "width"},
	KindSquare:           {"side"},
	KindCircle:           {"radius"},
	KindTriangle:         {"a", "b", "c"},
	KindCube:             {"side"},
	KindRectangularPrism: {"length", "width", "height"},
	KindSphere:           {"radius"},
	KindTriangularPrism:  {"a", "b", "c", "height"},
}

// Kinds returns every supported kind, 2D kinds first.
func Kinds() []Kind {
	return []Kind{
		KindRectangle, KindSquare, KindCircle, KindTriangle,
		KindCube, KindRectangularPrism, KindSphere, KindTriangularPrism,
	}
}

// String returns the canonical name, or "n/a" for KindUnknown.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "n/a"
}

// Title returns a human-readable name ("Rectangular prism").
func (k Kind) Title() string {
	name, ok := kindNames[k]
	if !ok {
		return "N/A"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(name[:1]) + name[1:]
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Dimension returns TwoD or ThreeD for the kind.
func (k Kind) Dimension() Dimension {
	switch k {
	case KindRectangle, KindSquare, KindCircle, KindTriangle:
		return TwoD
	case KindCube, KindRectangularPrism, KindSphere, KindTriangularPrism:
		return ThreeD
	}
	return DimensionUnknown
}

// ParamNames returns the positional parameter names of the kind.
func (k Kind) ParamNames() []string {
	names := kindParams[k]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "n/a" decodes to KindUnknown.
func (k *Kind) UnmarshalText(text []byte) error {
	if string(text) == "n/a" {
		*k = KindUnknown
		return nil
	}
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a canonical name or alias, case-insensitively.
// Dashes and spaces are treated as underscores.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)

	for k, n := range kindNames {
		if n == normalized {
			return k, nil
		}
	}
	if k, ok := kindAliases[strings.ReplaceAll(normalized, "_", "")]; ok {
		return k, nil
	}
	return KindUnknown, fmt.Errorf("unknown shape %q", name)
}

// Dimension tells whether a computation is planar or solid.
type Dimension int

const (
	DimensionUnknown Dimension = iota
	TwoD
	ThreeD
)

// String returns "2D" or "3D".
func (d Dimension) String() string {
	switch d {
	case TwoD:
		return "2D"
	case ThreeD:
		return "3D"
	}
	return "n/a"
}

// MarshalText implements encoding.TextMarshaler.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dimension) UnmarshalText(text []byte) error {
	parsed, err := ParseDimension(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDimension accepts "2D"/"3D" and the long forms "TwoD"/"ThreeD".
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2d", "twod":
		return TwoD, nil
	case "3d", "threed":
		return ThreeD, nil
	}
	return DimensionUnknown, fmt.Errorf("unknown dimension %q", s)
}
