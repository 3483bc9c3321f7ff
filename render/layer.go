package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gpuviz/dtx/datatex"
)

// TextureSet holds the GPU handles of one layer's shared data textures.
type TextureSet struct {
	Attributes       TextureID
	DecodeMatrices   TextureID
	InstanceMatrices TextureID
	Offsets          TextureID
	Positions        TextureID
}

// BucketDraw is the GPU-side state of one index-width bucket.
type BucketDraw struct {
	// NumIndices is the synthetic vertex count; zero means no draw.
	NumIndices int

	Indices    TextureID
	PortionIDs TextureID
}

// Layer is the GPU-resident form of a packed layer: texture handles plus
// the transform state consulted per draw. Produced by UploadLayer.
type Layer struct {
	Index      int
	NumObjects int

	Origin      mgl64.Vec3
	Position    mgl64.Vec3
	Rotation    *mgl64.Mat4
	ModelMatrix mgl64.Mat4

	Textures TextureSet
	Buckets  [datatex.NumBuckets]BucketDraw
}

// Destroy releases the layer's textures.
func (l *Layer) Destroy(device Device) {
	device.DeleteTexture(l.Textures.Attributes)
	device.DeleteTexture(l.Textures.DecodeMatrices)
	device.DeleteTexture(l.Textures.InstanceMatrices)
	device.DeleteTexture(l.Textures.Offsets)
	device.DeleteTexture(l.Textures.Positions)
	for _, b := range l.Buckets {
		device.DeleteTexture(b.Indices)
		device.DeleteTexture(b.PortionIDs)
	}
	*l = Layer{}
}

// RenderFlags is the per-frame section-plane activation state, laid out
// as layer-major: entry layerIndex*planeCount+planeIndex reports whether
// plane planeIndex clips layer layerIndex this frame.
type RenderFlags struct {
	PlaneCount int

	// SectionPlanesActivePerLayer has one entry per (layer, plane)
	// pair. A short or nil slice reads as all-inactive.
	SectionPlanesActivePerLayer []bool
}

// PlaneActive reports whether plane planeIndex is active for the layer.
func (f *RenderFlags) PlaneActive(layerIndex, planeIndex int) bool {
	if f == nil {
		return false
	}
	i := layerIndex*f.PlaneCount + planeIndex
	if i < 0 || i >= len(f.SectionPlanesActivePerLayer) {
		return false
	}
	return f.SectionPlanesActivePerLayer[i]
}
