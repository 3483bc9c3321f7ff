package datatex

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gpuviz/dtx"
)

// quad returns a unit quad's geometry with the given vertex count
// padding so tests can force a bucket by index width.
func quad() Object {
	return Object{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
		Color:   [4]uint8{255, 0, 0, 255},
		Pass:    dtx.PassColorOpaque,
		Solid:   true,
	}
}

func TestBuilderRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Object)
	}{
		{"no positions", func(o *Object) { o.Positions = nil }},
		{"ragged positions", func(o *Object) { o.Positions = o.Positions[:4] }},
		{"no indices", func(o *Object) { o.Indices = nil }},
		{"ragged indices", func(o *Object) { o.Indices = o.Indices[:4] }},
		{"index out of range", func(o *Object) { o.Indices = []uint32{0, 1, 99} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(0)
			o := quad()
			tt.mutate(&o)
			if _, err := b.AddObject(o); !errors.Is(err, ErrBadGeometry) {
				t.Fatalf("AddObject() error = %v, want ErrBadGeometry", err)
			}
		})
	}
}

func TestBuildEmptyLayer(t *testing.T) {
	if _, err := NewBuilder(0).Build(); !errors.Is(err, ErrEmptyLayer) {
		t.Fatalf("Build() error = %v, want ErrEmptyLayer", err)
	}
}

func TestBucketAssignmentByIndexWidth(t *testing.T) {
	tests := []struct {
		maxIndex uint32
		want     BucketKind
	}{
		{0, Bucket8},
		{255, Bucket8},
		{256, Bucket16},
		{65535, Bucket16},
		{65536, Bucket32},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := bucketFor(tt.maxIndex); got != tt.want {
				t.Errorf("bucketFor(%d) = %v, want %v", tt.maxIndex, got, tt.want)
			}
		})
	}
}

func TestBuildPacksAttributesRow(t *testing.T) {
	b := NewBuilder(2)
	o := quad()
	o.Clippable = true
	o.Solid = false
	if _, err := b.AddObject(o); err != nil {
		t.Fatal(err)
	}
	layer, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	if layer.Index != 2 {
		t.Errorf("layer.Index = %d, want 2", layer.Index)
	}
	if got := layer.Attributes.Texel(0, TexelColor); got != [4]uint32{255, 0, 0, 255} {
		t.Errorf("color texel = %v", got)
	}
	if got := layer.Attributes.Texel(0, TexelFlags)[0]; got != uint32(dtx.PassColorOpaque) {
		t.Errorf("flags pass = %d, want %d", got, dtx.PassColorOpaque)
	}
	if got := layer.Attributes.Texel(0, TexelFlags2)[0]; got != 1 {
		t.Errorf("flags2 clippable = %d, want 1", got)
	}
	if got := layer.Attributes.Texel(0, TexelSolid)[0]; got != 0 {
		t.Errorf("solid = %d, want 0", got)
	}
	if got := layer.Attributes.Texel(0, TexelVertexBase)[0]; got != 0 {
		t.Errorf("vertex base = %d, want 0", got)
	}
}

func TestBuildVertexBaseAccumulates(t *testing.T) {
	b := NewBuilder(0)
	for i := 0; i < 3; i++ {
		if _, err := b.AddObject(quad()); err != nil {
			t.Fatal(err)
		}
	}
	layer, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		want := uint32(i * 4)
		if got := layer.Attributes.Texel(i, TexelVertexBase)[0]; got != want {
			t.Errorf("object %d vertex base = %d, want %d", i, got, want)
		}
	}
	if layer.Positions.Count != 12 {
		t.Errorf("positions count = %d, want 12", layer.Positions.Count)
	}
}

func TestBuildBucketContents(t *testing.T) {
	b := NewBuilder(0)
	if _, err := b.AddObject(quad()); err != nil {
		t.Fatal(err)
	}
	layer, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	b8 := layer.Buckets[Bucket8]
	if b8.NumIndices != 6 {
		t.Fatalf("8-bit bucket NumIndices = %d, want 6", b8.NumIndices)
	}
	if b8.Indices.Triangles != 2 || b8.PortionIDs.Polygons != 2 {
		t.Fatalf("bucket textures: %d triangles, %d polygons", b8.Indices.Triangles, b8.PortionIDs.Polygons)
	}
	if got := b8.Indices.Triangle(1); got != [3]uint32{0, 2, 3} {
		t.Errorf("triangle 1 = %v", got)
	}
	for p := 0; p < 2; p++ {
		if got := b8.PortionIDs.ObjectIndex(p); got != 0 {
			t.Errorf("polygon %d object index = %d, want 0", p, got)
		}
	}
	for _, kind := range []BucketKind{Bucket16, Bucket32} {
		if layer.Buckets[kind].NumIndices != 0 {
			t.Errorf("%s bucket should be empty", kind)
		}
	}
}

func TestPortionTextureHighLowWords(t *testing.T) {
	p := &PortionTexture{Polygons: 1, IDs: make([]uint16, PortionTexelsPerPolygon)}
	p.setObjectIndex(0, 0x0003_BEEF)
	if p.IDs[0] != 0x0003 || p.IDs[1] != 0xBEEF {
		t.Fatalf("words = %04x %04x", p.IDs[0], p.IDs[1])
	}
	if got := p.ObjectIndex(0); got != 0x0003_BEEF {
		t.Fatalf("ObjectIndex = %#x", got)
	}
}

func TestQuantizeRoundTrip(t *testing.T) {
	positions := []float32{
		-12.5, 3.25, 1e4,
		17.5, 88, 1e4 + 250,
		2, -40, 1e4 + 125,
	}
	out := &PositionsTexture{}
	decode := quantize(positions, out)

	for i := 0; i < 3; i++ {
		q := out.Coord(i)
		v := decode.Mul4x1(mgl32.Vec4{float32(q[0]), float32(q[1]), float32(q[2]), 1})
		for a := 0; a < 3; a++ {
			want := positions[i*3+a]
			// Quantization error is bounded by half a step.
			extent := float32(130.0)
			if a == 2 {
				extent = 250
			}
			step := extent / QuantRange
			if diff := v[a] - want; diff > step || diff < -step {
				t.Errorf("vertex %d axis %d: decoded %g, want %g (step %g)", i, a, v[a], want, step)
			}
		}
	}
}

func TestQuantizeFlatAxis(t *testing.T) {
	positions := []float32{
		5, 0, 0,
		5, 1, 0,
		5, 0, 1,
	}
	out := &PositionsTexture{}
	decode := quantize(positions, out)
	for i := 0; i < 3; i++ {
		q := out.Coord(i)
		if q[0] != 0 {
			t.Fatalf("flat axis quantized to %d, want 0", q[0])
		}
		v := decode.Mul4x1(mgl32.Vec4{float32(q[0]), float32(q[1]), float32(q[2]), 1})
		if v[0] != 5 {
			t.Fatalf("flat axis decoded to %g, want 5", v[0])
		}
	}
}
