package scene

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/soypat/glgl/math/ms3"

	"github.com/reactor-gpu/reactor-go/pkg/sdf"
)

// PackedCapacity is the fixed slot count of the GPU uniform layout.
// It is intentionally smaller than MaxEntries; packing a larger scene
// is a build-time error, never a silent truncation.
const PackedCapacity = 16

// PackedPrimitive is one std140 slot: three vec4s per primitive.
//
//	Params holds the position payload with the type tag in w.
//	Extra holds per-kind scalars and extents.
//	Color holds the palette RGB with the material id in w.
type PackedPrimitive struct {
	Params [4]float32
	Extra  [4]float32
	Color  [4]float32
}

// PackedScene is the uniform-buffer image of a scene: a fixed slot
// array plus the scene-wide combining operator and blend radius.
// The layout is std140-compatible so MarshalBinary output can be
// uploaded as-is.
type PackedScene struct {
	Primitives [PackedCapacity]PackedPrimitive
	Count      uint32
	OpType     uint32
	Smoothing  float32
	Time       float32
}

// Pack flattens the scene into the fixed GPU layout. The packed form
// carries one scene-wide operator and blend radius, so per-entry
// operators are collapsed to the given pair; the CPU evaluator remains
// the reference for heterogeneous compositions.
func (s *Scene) Pack(op sdf.Op, smoothing float32) (*PackedScene, error) {
	if len(s.entries) > PackedCapacity {
		return nil, fmt.Errorf("scene has %d entries, packed capacity is %d", len(s.entries), PackedCapacity)
	}
	if op.Smooth() && smoothing <= sdf.MinSmoothing {
		return nil, fmt.Errorf("smooth operator %v needs blend radius > %g", op, sdf.MinSmoothing)
	}
	ps := &PackedScene{
		Count:     uint32(len(s.entries)),
		OpType:    uint32(op),
		Smoothing: smoothing,
		Time:      s.time,
	}
	for i := range s.entries {
		e := &s.entries[i]
		ps.Primitives[i] = packEntry(e, s.MaterialColor(e.Material))
	}
	return ps, nil
}

func packEntry(e *Entry, color ms3.Vec) PackedPrimitive {
	sh := e.Shape
	p := PackedPrimitive{
		Params: [4]float32{sh.A.X, sh.A.Y, sh.A.Z, float32(sh.Kind)},
		Color:  [4]float32{color.X, color.Y, color.Z, float32(e.Material)},
	}
	switch sh.Kind {
	case sdf.KindSphere:
		p.Extra = [4]float32{sh.R1, 0, 0, 0}
	case sdf.KindBox:
		p.Extra = [4]float32{sh.B.X, sh.B.Y, sh.B.Z, 0}
	case sdf.KindRoundBox:
		p.Extra = [4]float32{sh.B.X, sh.B.Y, sh.B.Z, sh.R1}
	case sdf.KindCapsule:
		// Capsules need both endpoints: A rides in Params, B in Extra
		// with the radius in w.
		p.Extra = [4]float32{sh.B.X, sh.B.Y, sh.B.Z, sh.R1}
	case sdf.KindTorus, sdf.KindCylinder, sdf.KindCone:
		p.Extra = [4]float32{sh.R1, sh.R2, 0, 0}
	case sdf.KindPlane:
		p.Extra = [4]float32{sh.R1, 0, 0, 0}
	}
	return p
}

// MarshalBinary encodes the packed scene little-endian in declaration
// order. The result is 16-byte aligned (784 bytes) and matches the
// std140 uniform block byte for byte.
func (ps *PackedScene) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(PackedCapacity*48 + 16)
	if err := binary.Write(&buf, binary.LittleEndian, ps); err != nil {
		return nil, fmt.Errorf("encoding packed scene: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a packed scene produced by MarshalBinary
func (ps *PackedScene) UnmarshalBinary(data []byte) error {
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, ps); err != nil {
		return fmt.Errorf("decoding packed scene: %w", err)
	}
	return nil
}
