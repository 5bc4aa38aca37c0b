// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpgpu

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind is the type tag of a kernel input. The set is closed: four scalar
// classes times four arities, plus Matrix.
type Kind uint8

// Kernel input kinds.
const (
	KindInvalid Kind = iota
	KindBool
	KindBVec2
	KindBVec3
	KindBVec4
	KindInt
	KindIVec2
	KindIVec3
	KindIVec4
	KindUint
	KindUVec2
	KindUVec3
	KindUVec4
	KindFloat
	KindVec2
	KindVec3
	KindVec4
	KindMatrix
)

// Scalar is the component class of a scalar or vector kind.
type Scalar uint8

// Scalar classes.
const (
	ScalarBool Scalar = iota
	ScalarInt
	ScalarUint
	ScalarFloat
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindBVec2:   "bvec2",
	KindBVec3:   "bvec3",
	KindBVec4:   "bvec4",
	KindInt:     "int",
	KindIVec2:   "ivec2",
	KindIVec3:   "ivec3",
	KindIVec4:   "ivec4",
	KindUint:    "uint",
	KindUVec2:   "uvec2",
	KindUVec3:   "uvec3",
	KindUVec4:   "uvec4",
	KindFloat:   "float",
	KindVec2:    "vec2",
	KindVec3:    "vec3",
	KindVec4:    "vec4",
	KindMatrix:  "matrix",
}

// String returns the short kind name used on command lines ("vec3", "matrix").
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindBool; k <= KindMatrix; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: kind %q", ErrUnsupportedType, s)
}

// Valid reports whether k is one of the 17 tags.
func (k Kind) Valid() bool { return k >= KindBool && k <= KindMatrix }

// IsMatrix reports whether k is the sampled-buffer kind.
func (k Kind) IsMatrix() bool { return k == KindMatrix }

// Arity returns the component count of a scalar or vector kind, 0 for
// Matrix and invalid kinds.
func (k Kind) Arity() int {
	if k < KindBool || k > KindVec4 {
		return 0
	}
	return int(k-KindBool)%4 + 1
}

// Scalar returns the component class. It is meaningful only when Arity > 0.
func (k Kind) Scalar() Scalar {
	return Scalar((k - KindBool) / 4)
}

// WGSL returns the type used in the kernel declaration. Booleans are not
// host-shareable in WGSL uniform buffers, so bool kinds are declared as u32.
func (k Kind) WGSL() string {
	if k == KindMatrix {
		return "texture_2d<f32>"
	}
	var elem string
	switch k.Scalar() {
	case ScalarBool, ScalarUint:
		elem = "u32"
	case ScalarInt:
		elem = "i32"
	case ScalarFloat:
		elem = "f32"
	}
	if n := k.Arity(); n > 1 {
		return fmt.Sprintf("vec%d<%s>", n, elem)
	}
	return elem
}

// Value is a tagged kernel input: one of the scalar and vector types of this
// package, or a Matrix. The interface is sealed.
type Value interface {
	Kind() Kind
	isValue()
}

// Scalar and vector value types.
type (
	Bool  bool
	BVec2 [2]bool
	BVec3 [3]bool
	BVec4 [4]bool
	Int   int32
	IVec2 [2]int32
	IVec3 [3]int32
	IVec4 [4]int32
	Uint  uint32
	UVec2 [2]uint32
	UVec3 [3]uint32
	UVec4 [4]uint32
	Float float32
	Vec2  [2]float32
	Vec3  [3]float32
	Vec4  [4]float32
)

func (Bool) Kind() Kind  { return KindBool }
func (BVec2) Kind() Kind { return KindBVec2 }
func (BVec3) Kind() Kind { return KindBVec3 }
func (BVec4) Kind() Kind { return KindBVec4 }
func (Int) Kind() Kind   { return KindInt }
func (IVec2) Kind() Kind { return KindIVec2 }
func (IVec3) Kind() Kind { return KindIVec3 }
func (IVec4) Kind() Kind { return KindIVec4 }
func (Uint) Kind() Kind  { return KindUint }
func (UVec2) Kind() Kind { return KindUVec2 }
func (UVec3) Kind() Kind { return KindUVec3 }
func (UVec4) Kind() Kind { return KindUVec4 }
func (Float) Kind() Kind { return KindFloat }
func (Vec2) Kind() Kind  { return KindVec2 }
func (Vec3) Kind() Kind  { return KindVec3 }
func (Vec4) Kind() Kind  { return KindVec4 }

func (Bool) isValue()  {}
func (BVec2) isValue() {}
func (BVec3) isValue() {}
func (BVec4) isValue() {}
func (Int) isValue()   {}
func (IVec2) isValue() {}
func (IVec3) isValue() {}
func (IVec4) isValue() {}
func (Uint) isValue()  {}
func (UVec2) isValue() {}
func (UVec3) isValue() {}
func (UVec4) isValue() {}
func (Float) isValue() {}
func (Vec2) isValue()  {}
func (Vec3) isValue()  {}
func (Vec4) isValue()  {}

// ValueOf converts v into a tagged value. Besides the types of this package
// it accepts the Go scalars bool, int32, uint32, float32, int, uint and
// float64, and fixed arrays of 2..4 bool, int32, uint32 or float32.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case *Matrix:
		if x == nil {
			return nil, fmt.Errorf("%w: nil *Matrix", ErrUnsupportedType)
		}
		return *x, nil
	case Bool, BVec2, BVec3, BVec4, Int, IVec2, IVec3, IVec4,
		Uint, UVec2, UVec3, UVec4, Float, Vec2, Vec3, Vec4, Matrix:
		return x.(Value), nil
	case bool:
		return Bool(x), nil
	case int32:
		return Int(x), nil
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, fmt.Errorf("%w: int %d overflows int32", ErrUnsupportedType, x)
		}
		return Int(int32(x)), nil
	case uint32:
		return Uint(x), nil
	case uint:
		if x > math.MaxUint32 {
			return nil, fmt.Errorf("%w: uint %d overflows uint32", ErrUnsupportedType, x)
		}
		return Uint(uint32(x)), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(float32(x)), nil
	case [2]bool:
		return BVec2(x), nil
	case [3]bool:
		return BVec3(x), nil
	case [4]bool:
		return BVec4(x), nil
	case [2]int32:
		return IVec2(x), nil
	case [3]int32:
		return IVec3(x), nil
	case [4]int32:
		return IVec4(x), nil
	case [2]uint32:
		return UVec2(x), nil
	case [3]uint32:
		return UVec3(x), nil
	case [4]uint32:
		return UVec4(x), nil
	case [2]float32:
		return Vec2(x), nil
	case [3]float32:
		return Vec3(x), nil
	case [4]float32:
		return Vec4(x), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// Components returns the raw 32-bit component words of a scalar or vector
// value and its arity. Floats are IEEE 754 bit patterns, booleans are 0 or 1.
// Matrix values return n == 0.
func Components(v Value) (words [4]uint32, n int) {
	b := func(x bool) uint32 {
		if x {
			return 1
		}
		return 0
	}
	f := math.Float32bits
	switch x := v.(type) {
	case Bool:
		return [4]uint32{b(bool(x))}, 1
	case BVec2:
		return [4]uint32{b(x[0]), b(x[1])}, 2
	case BVec3:
		return [4]uint32{b(x[0]), b(x[1]), b(x[2])}, 3
	case BVec4:
		return [4]uint32{b(x[0]), b(x[1]), b(x[2]), b(x[3])}, 4
	case Int:
		return [4]uint32{uint32(x)}, 1
	case IVec2:
		return [4]uint32{uint32(x[0]), uint32(x[1])}, 2
	case IVec3:
		return [4]uint32{uint32(x[0]), uint32(x[1]), uint32(x[2])}, 3
	case IVec4:
		return [4]uint32{uint32(x[0]), uint32(x[1]), uint32(x[2]), uint32(x[3])}, 4
	case Uint:
		return [4]uint32{uint32(x)}, 1
	case UVec2:
		return [4]uint32{x[0], x[1]}, 2
	case UVec3:
		return [4]uint32{x[0], x[1], x[2]}, 3
	case UVec4:
		return [4]uint32(x), 4
	case Float:
		return [4]uint32{f(float32(x))}, 1
	case Vec2:
		return [4]uint32{f(x[0]), f(x[1])}, 2
	case Vec3:
		return [4]uint32{f(x[0]), f(x[1]), f(x[2])}, 3
	case Vec4:
		return [4]uint32{f(x[0]), f(x[1]), f(x[2]), f(x[3])}, 4
	}
	return words, 0
}

// UniformSize is the byte size of one uniform block. Every scalar and vector
// kind fits a 16-byte block, which also satisfies the uniform buffer
// alignment of vec3 and vec4.
const UniformSize = 16

// EncodeUniform returns the 16-byte little-endian uniform block for a scalar
// or vector value.
func EncodeUniform(v Value) ([]byte, error) {
	words, n := Components(v)
	if n == 0 {
		return nil, fmt.Errorf("%w: %v is not a uniform kind", ErrUnsupportedType, v.Kind())
	}
	buf := make([]byte, UniformSize)
	for i := range n {
		binary.LittleEndian.PutUint32(buf[i*4:], words[i])
	}
	return buf, nil
}

// Floats returns the components of a scalar or vector value converted to
// float32, padded with zeros. Booleans convert to 0 or 1.
func Floats(v Value) Vec4 {
	words, n := Components(v)
	var out Vec4
	for i := range n {
		switch v.Kind().Scalar() {
		case ScalarBool, ScalarUint:
			out[i] = float32(words[i])
		case ScalarInt:
			out[i] = float32(int32(words[i]))
		case ScalarFloat:
			out[i] = math.Float32frombits(words[i])
		}
	}
	return out
}
