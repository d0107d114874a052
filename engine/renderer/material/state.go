package material

// DepthFunc is the depth comparison applied by the depth test.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthEqual
	DepthGreater
	DepthGreaterEqual
	DepthNotEqual
	DepthAlways
	DepthNever
)

func (d DepthFunc) String() string {
	switch d {
	case DepthLess:
		return "less"
	case DepthLessEqual:
		return "less_equal"
	case DepthEqual:
		return "equal"
	case DepthGreater:
		return "greater"
	case DepthGreaterEqual:
		return "greater_equal"
	case DepthNotEqual:
		return "not_equal"
	case DepthAlways:
		return "always"
	case DepthNever:
		return "never"
	default:
		return "unknown"
	}
}

// BlendMode selects the colour blend equation.
type BlendMode uint8

const (
	BlendNone BlendMode = iota
	BlendAlpha
	BlendAdditive
)

func (b BlendMode) String() string {
	switch b {
	case BlendNone:
		return "none"
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return "unknown"
	}
}

// CullMode selects which triangle faces are discarded.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

func (c CullMode) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	case CullNone:
		return "none"
	default:
		return "unknown"
	}
}

// Winding is the vertex order of front-facing triangles.
type Winding uint8

const (
	WindingCCW Winding = iota
	WindingCW
)

func (w Winding) String() string {
	if w == WindingCW {
		return "cw"
	}
	return "ccw"
}

// Topology is how vertices are assembled into primitives.
type Topology uint8

const (
	TopologyTriangles Topology = iota
	TopologyLines
	TopologyPoints
)

func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyLines:
		return "lines"
	case TopologyPoints:
		return "points"
	default:
		return "unknown"
	}
}

// DepthBias offsets written depth. Depth-only passes use it to push occluders back.
type DepthBias struct {
	Constant   int32
	SlopeScale float32
}

// State is a partial GPU state block. Nil fields leave the underlying value untouched
// when merged, so a material only overrides what it names.
type State struct {
	DepthWrite *bool
	DepthTest  *DepthFunc
	Blend      *BlendMode
	Cull       *CullMode
	DepthBias  *DepthBias
	ColorWrite *bool
	Winding    *Winding
	Topology   *Topology
}

// ResolvedState is a fully specified GPU state block. It is comparable and is used as part of
// pipeline cache keys.
type ResolvedState struct {
	DepthWrite bool
	DepthTest  DepthFunc
	Blend      BlendMode
	Cull       CullMode
	DepthBias  DepthBias
	ColorWrite bool
	Winding    Winding
	Topology   Topology
}

// DefaultResolvedState is what the device uses for fields nobody set: depth write on,
// less-than depth test, no blending, back-face culling of counter-clockwise triangles, colour
// writes on and no depth bias.
var DefaultResolvedState = ResolvedState{
	DepthWrite: true,
	DepthTest:  DepthLess,
	Blend:      BlendNone,
	Cull:       CullBack,
	ColorWrite: true,
	Winding:    WindingCCW,
	Topology:   TopologyTriangles,
}

// Merge returns s with every field that over sets replaced by over's value.
func (s State) Merge(over State) State {
	if over.DepthWrite != nil {
		s.DepthWrite = over.DepthWrite
	}
	if over.DepthTest != nil {
		s.DepthTest = over.DepthTest
	}
	if over.Blend != nil {
		s.Blend = over.Blend
	}
	if over.Cull != nil {
		s.Cull = over.Cull
	}
	if over.DepthBias != nil {
		s.DepthBias = over.DepthBias
	}
	if over.ColorWrite != nil {
		s.ColorWrite = over.ColorWrite
	}
	if over.Winding != nil {
		s.Winding = over.Winding
	}
	if over.Topology != nil {
		s.Topology = over.Topology
	}
	return s
}

// Resolve fills unset fields from DefaultResolvedState.
func (s State) Resolve() ResolvedState {
	r := DefaultResolvedState
	if s.DepthWrite != nil {
		r.DepthWrite = *s.DepthWrite
	}
	if s.DepthTest != nil {
		r.DepthTest = *s.DepthTest
	}
	if s.Blend != nil {
		r.Blend = *s.Blend
	}
	if s.Cull != nil {
		r.Cull = *s.Cull
	}
	if s.DepthBias != nil {
		r.DepthBias = *s.DepthBias
	}
	if s.ColorWrite != nil {
		r.ColorWrite = *s.ColorWrite
	}
	if s.Winding != nil {
		r.Winding = *s.Winding
	}
	if s.Topology != nil {
		r.Topology = *s.Topology
	}
	return r
}

// IsZero reports whether no field is set.
func (s State) IsZero() bool {
	return s == State{}
}

// Ptr returns a pointer to v, for filling State literals.
func Ptr[T any](v T) *T {
	return &v
}
