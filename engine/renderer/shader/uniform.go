package shader

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// UniformType is the WGSL type of a value in a program's uniform block.
type UniformType int

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
)

// typeLayout is the byte size and alignment of a uniform type in a WGSL uniform buffer.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

var uniformLayouts = map[UniformType]typeLayout{
	UniformFloat: {4, 4},
	UniformInt:   {4, 4},
	UniformVec2:  {8, 8},
	UniformVec3:  {12, 16},
	UniformVec4:  {16, 16},
	UniformMat3:  {48, 16}, // three vec3 columns, each padded to 16 bytes
	UniformMat4:  {64, 16},
}

// WGSL returns the WGSL type name used for this uniform type.
func (t UniformType) WGSL() string {
	switch t {
	case UniformFloat:
		return "f32"
	case UniformInt:
		return "i32"
	case UniformVec2:
		return "vec2<f32>"
	case UniformVec3:
		return "vec3<f32>"
	case UniformVec4:
		return "vec4<f32>"
	case UniformMat3:
		return "mat3x3<f32>"
	case UniformMat4:
		return "mat4x4<f32>"
	default:
		return "unknown"
	}
}

// Uniform declares one named value in a program's uniform block.
type Uniform struct {
	Name string
	Type UniformType
}

// UniformSlot is the resolved placement of a uniform inside the packed block.
type UniformSlot struct {
	Uniform
	Offset uint64
}

// UniformLayout is the packed layout of a program's uniform block, in declaration order.
type UniformLayout struct {
	slots  []UniformSlot
	byName map[string]int
	size   uint64
}

// NewUniformLayout packs uniforms in declaration order using WGSL uniform address space rules.
// The total size is rounded up to 16 bytes. Duplicate names keep their first declaration.
//
// Parameters:
//   - uniforms: the declarations to pack
//
// Returns:
//   - UniformLayout: the packed layout
func NewUniformLayout(uniforms []Uniform) UniformLayout {
	l := UniformLayout{
		slots:  make([]UniformSlot, 0, len(uniforms)),
		byName: make(map[string]int, len(uniforms)),
	}

	var offset uint64
	for _, u := range uniforms {
		if _, dup := l.byName[u.Name]; dup {
			continue
		}
		tl, ok := uniformLayouts[u.Type]
		if !ok {
			continue
		}
		offset = roundUpAlign(tl.align, offset)
		l.byName[u.Name] = len(l.slots)
		l.slots = append(l.slots, UniformSlot{Uniform: u, Offset: offset})
		offset += tl.size
	}
	l.size = roundUpAlign(16, offset)
	return l
}

// Slot looks up a uniform by name, falling back to its WGSL member name so layouts reflected
// from source answer "uPointLights[1].color" through the member uPointLights_1_color.
func (l UniformLayout) Slot(name string) (UniformSlot, bool) {
	i, ok := l.byName[name]
	if !ok {
		i, ok = l.byName[FieldName(name)]
	}
	if !ok {
		return UniformSlot{}, false
	}
	return l.slots[i], true
}

// Slots returns the packed slots in declaration order.
func (l UniformLayout) Slots() []UniformSlot {
	return l.slots
}

// Size returns the packed block size in bytes.
func (l UniformLayout) Size() uint64 {
	return l.size
}

// Encode writes value into block at the slot's offset. block must be at least Size() bytes.
// Accepted Go types per uniform type: float32 (Float), int32/int (Int), mgl32.Vec2/3/4,
// mgl32.Mat3 and mgl32.Mat4 (a Mat4 is also accepted for Mat3 and truncated to its 3x3 block).
//
// Parameters:
//   - block: the destination uniform block
//   - slot: where to write
//   - value: the value to encode
//
// Returns:
//   - error: an error if the value does not match the slot type
func Encode(block []byte, slot UniformSlot, value any) error {
	dst := block[slot.Offset:]
	switch slot.Type {
	case UniformFloat:
		v, ok := value.(float32)
		if !ok {
			return mismatch(slot, value)
		}
		putFloats(dst, v)
	case UniformInt:
		var v int32
		switch x := value.(type) {
		case int32:
			v = x
		case int:
			v = int32(x)
		default:
			return mismatch(slot, value)
		}
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case UniformVec2:
		v, ok := value.(mgl32.Vec2)
		if !ok {
			return mismatch(slot, value)
		}
		putFloats(dst, v[:]...)
	case UniformVec3:
		v, ok := value.(mgl32.Vec3)
		if !ok {
			return mismatch(slot, value)
		}
		putFloats(dst, v[:]...)
	case UniformVec4:
		v, ok := value.(mgl32.Vec4)
		if !ok {
			return mismatch(slot, value)
		}
		putFloats(dst, v[:]...)
	case UniformMat3:
		var m mgl32.Mat3
		switch x := value.(type) {
		case mgl32.Mat3:
			m = x
		case mgl32.Mat4:
			m = x.Mat3()
		default:
			return mismatch(slot, value)
		}
		for col := range 3 {
			putFloats(dst[col*16:], m[col*3], m[col*3+1], m[col*3+2], 0)
		}
	case UniformMat4:
		v, ok := value.(mgl32.Mat4)
		if !ok {
			return mismatch(slot, value)
		}
		putFloats(dst, v[:]...)
	default:
		return errors.Errorf("uniform %q has unknown type %d", slot.Name, slot.Type)
	}
	return nil
}

func mismatch(slot UniformSlot, value any) error {
	return errors.Errorf("uniform %q expects %s, got %T", slot.Name, slot.Type.WGSL(), value)
}

func putFloats(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}
