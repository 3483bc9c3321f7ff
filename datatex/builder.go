package datatex

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gpuviz/dtx"
)

// Builder errors.
var (
	// ErrEmptyLayer is returned by Build when no objects were added.
	ErrEmptyLayer = errors.New("datatex: layer has no objects")

	// ErrTooManyObjects is returned when the layer exceeds MaxObjects.
	ErrTooManyObjects = errors.New("datatex: too many objects for one layer")

	// ErrTooManyVertices is returned when the shared coordinate texture
	// would overflow.
	ErrTooManyVertices = errors.New("datatex: too many vertices for one layer")

	// ErrTooManyPolygons is returned when a bucket's polygon textures
	// would overflow.
	ErrTooManyPolygons = errors.New("datatex: too many polygons for one bucket")

	// ErrBadGeometry is returned for malformed object geometry.
	ErrBadGeometry = errors.New("datatex: bad geometry")
)

// Object is the input geometry and state for one object in a layer.
type Object struct {
	// Positions is model-space vertex coordinates, x,y,z per vertex.
	Positions []float32

	// Indices is an object-local triangle list.
	Indices []uint32

	// Color is the object color; an alpha of zero makes the vertex
	// stage cull the object entirely.
	Color [4]uint8

	// Pass is the render pass the object participates in.
	Pass dtx.RenderPass

	// Clippable objects are evaluated against active section planes.
	Clippable bool

	// Solid geometry skips the dynamic backface flip.
	Solid bool

	// InstanceMatrix, when non-nil, is composed with the decode matrix
	// in the vertex stage (instance * decode).
	InstanceMatrix *mgl32.Mat4

	// Offset is the per-object positional offset, applied in world
	// space when the scene configuration enables vertex offsets.
	Offset [3]float32
}

// Builder packs objects into a layer's texel encoding. It is the
// layer-building collaborator of the renderer: buckets are assigned by
// object-local index width, coordinates are quantized against each
// object's bounds, and the fixed RowWidth addressing is enforced.
//
// A Builder is single-use: call Build once after adding all objects.
type Builder struct {
	index       int
	origin      mgl64.Vec3
	position    mgl64.Vec3
	rotation    *mgl64.Mat4
	modelMatrix mgl64.Mat4
	objects     []Object
}

// NewBuilder creates a builder for the layer at the given index within
// its model. The model matrix defaults to identity.
func NewBuilder(layerIndex int) *Builder {
	return &Builder{
		index:       layerIndex,
		modelMatrix: mgl64.Ident4(),
	}
}

// SetOrigin sets the layer's RTC origin.
func (b *Builder) SetOrigin(origin mgl64.Vec3) { b.origin = origin }

// SetPosition sets the layer model's position offset.
func (b *Builder) SetPosition(position mgl64.Vec3) { b.position = position }

// SetRotation sets the rotation for georeferenced layers.
func (b *Builder) SetRotation(rotation *mgl64.Mat4) { b.rotation = rotation }

// SetModelMatrix sets the scene-model transform.
func (b *Builder) SetModelMatrix(m mgl64.Mat4) { b.modelMatrix = m }

// AddObject validates and queues one object. It returns the object's
// index within the layer.
func (b *Builder) AddObject(o Object) (int, error) {
	if len(o.Positions) == 0 || len(o.Positions)%3 != 0 {
		return 0, fmt.Errorf("%w: position count %d is not a multiple of 3", ErrBadGeometry, len(o.Positions))
	}
	if len(o.Indices) == 0 || len(o.Indices)%3 != 0 {
		return 0, fmt.Errorf("%w: index count %d is not a multiple of 3", ErrBadGeometry, len(o.Indices))
	}
	numVerts := uint32(len(o.Positions) / 3)
	for _, i := range o.Indices {
		if i >= numVerts {
			return 0, fmt.Errorf("%w: index %d out of range (%d vertices)", ErrBadGeometry, i, numVerts)
		}
	}
	if len(b.objects) >= MaxObjects {
		return 0, fmt.Errorf("%w: limit %d", ErrTooManyObjects, MaxObjects)
	}
	b.objects = append(b.objects, o)
	return len(b.objects) - 1, nil
}

// bucketState accumulates one bucket's triangles during Build.
type bucketState struct {
	indices    []uint32
	portionIDs []uint32
}

// Build packs the queued objects and returns the immutable layer.
func (b *Builder) Build() (*Layer, error) {
	numObjects := len(b.objects)
	if numObjects == 0 {
		return nil, ErrEmptyLayer
	}

	layer := &Layer{
		Index:       b.index,
		Origin:      b.origin,
		Position:    b.position,
		Rotation:    b.rotation,
		ModelMatrix: b.modelMatrix,
		NumObjects:  numObjects,
		Attributes: &AttributesTexture{
			NumObjects: numObjects,
			Texels:     make([][4]uint32, numObjects*ObjectRowTexels),
		},
		DecodeMatrices: &MatrixTexture{
			NumObjects: numObjects,
			Values:     make([]float32, numObjects*16),
		},
		InstanceMatrices: &MatrixTexture{
			NumObjects: numObjects,
			Values:     make([]float32, numObjects*16),
		},
		Offsets: &OffsetsTexture{
			NumObjects: numObjects,
			Offsets:    make([]float32, numObjects*3),
		},
		Positions: &PositionsTexture{},
	}

	var buckets [NumBuckets]bucketState
	vertexBase := 0

	for objectIndex, o := range b.objects {
		numVerts := len(o.Positions) / 3
		if vertexBase+numVerts > MaxVertices {
			return nil, fmt.Errorf("%w: limit %d", ErrTooManyVertices, MaxVertices)
		}

		decode := quantize(o.Positions, layer.Positions)
		layer.DecodeMatrices.SetMat4(objectIndex, decode)

		instance := mgl32.Ident4()
		if o.InstanceMatrix != nil {
			instance = *o.InstanceMatrix
		}
		layer.InstanceMatrices.SetMat4(objectIndex, instance)

		copy(layer.Offsets.Offsets[objectIndex*3:], o.Offset[:])

		kind := bucketFor(maxIndex(o.Indices))
		bs := &buckets[kind]
		if (len(bs.indices)+len(o.Indices))/3 > MaxPolygons {
			return nil, fmt.Errorf("%w: bucket %s limit %d", ErrTooManyPolygons, kind, MaxPolygons)
		}
		bs.indices = append(bs.indices, o.Indices...)
		for t := 0; t < len(o.Indices)/3; t++ {
			bs.portionIDs = append(bs.portionIDs, uint32(objectIndex))
		}

		row := layer.Attributes.Texels[objectIndex*ObjectRowTexels:]
		row[TexelColor] = [4]uint32{uint32(o.Color[0]), uint32(o.Color[1]), uint32(o.Color[2]), uint32(o.Color[3])}
		row[TexelFlags] = [4]uint32{uint32(o.Pass), 0, 0, 0}
		row[TexelFlags2] = [4]uint32{boolTexel(o.Clippable), 0, 0, 0}
		row[TexelVertexBase] = [4]uint32{uint32(vertexBase), 0, 0, 0}
		// This builder packs each bucket's triangle runs densely, so
		// the base offset is always zero; the decode path still honors
		// nonzero offsets written by other producers.
		row[TexelIndexBaseOffset] = [4]uint32{0, 0, 0, 0}
		row[TexelSolid] = [4]uint32{boolTexel(o.Solid), 0, 0, 0}

		vertexBase += numVerts
	}

	for kind := range buckets {
		bs := &buckets[kind]
		if len(bs.indices) == 0 {
			continue
		}
		numTris := len(bs.indices) / 3
		portion := &PortionTexture{
			Polygons: numTris,
			IDs:      make([]uint16, numTris*PortionTexelsPerPolygon),
		}
		for p, object := range bs.portionIDs {
			portion.setObjectIndex(p, object)
		}
		layer.Buckets[kind] = Bucket{
			NumIndices: len(bs.indices),
			Indices:    &IndexTexture{Triangles: numTris, Indices: bs.indices},
			PortionIDs: portion,
		}
	}

	return layer, nil
}

// quantize appends o's coordinates to the shared positions texture as
// 16-bit values and returns the decode matrix that maps them back to
// model space: position = translate(min) * scale(extent/QuantRange).
func quantize(positions []float32, out *PositionsTexture) mgl32.Mat4 {
	min := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i := 0; i < len(positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := positions[i+a]
			if v < min[a] {
				min[a] = v
			}
			if v > max[a] {
				max[a] = v
			}
		}
	}

	var scale [3]float32
	for a := 0; a < 3; a++ {
		extent := max[a] - min[a]
		if extent <= 0 {
			// Flat axis: every value quantizes to zero, any nonzero
			// scale decodes it back to min.
			extent = 1
		}
		scale[a] = extent / QuantRange
	}

	for i := 0; i < len(positions); i += 3 {
		for a := 0; a < 3; a++ {
			q := (positions[i+a] - min[a]) / scale[a]
			out.Coords = append(out.Coords, uint16(math.Min(QuantRange, math.Max(0, math.Round(float64(q))))))
		}
		out.Count++
	}

	return mgl32.Translate3D(min[0], min[1], min[2]).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func maxIndex(indices []uint32) uint32 {
	var m uint32
	for _, i := range indices {
		if i > m {
			m = i
		}
	}
	return m
}

func boolTexel(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
