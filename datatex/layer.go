package datatex

import "github.com/go-gl/mathgl/mgl64"

// Bucket is one index-width partition of a layer: the triangles whose
// object-local vertex indices fit the bucket's channel width, plus the
// textures that address them. A bucket with zero indices issues no draw.
type Bucket struct {
	// NumIndices is the synthetic vertex count for the bucket's draw:
	// three per triangle, no index buffer attribute involved.
	NumIndices int

	// Indices holds one triangle per texel.
	Indices *IndexTexture

	// PortionIDs maps bucket-local polygon indices to object indices.
	PortionIDs *PortionTexture
}

// Layer is a fully packed, immutable texel scene encoding plus the
// transform state the renderer needs per draw. Layers are produced by a
// Builder and consumed read-only.
type Layer struct {
	// Index is the layer's position in the model's layer list; it
	// selects the layer's slice of the per-layer-per-plane render flags.
	Index int

	// Origin is the layer's RTC origin: the world-space anchor of its
	// local coordinate space.
	Origin mgl64.Vec3

	// Position is the layer model's position offset, applied after
	// Origin (and after Origin's rotation, when present).
	Position mgl64.Vec3

	// Rotation, when non-nil, orients a georeferenced layer; the RTC
	// origin is rotated into this orientation before Position is added.
	Rotation *mgl64.Mat4

	// ModelMatrix is the scene-model transform applied to decoded
	// positions before the view transform.
	ModelMatrix mgl64.Mat4

	NumObjects int

	Attributes       *AttributesTexture
	DecodeMatrices   *MatrixTexture
	InstanceMatrices *MatrixTexture
	Offsets          *OffsetsTexture
	Positions        *PositionsTexture

	// Buckets is indexed by BucketKind.
	Buckets [NumBuckets]Bucket
}
