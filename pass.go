package dtx

import "fmt"

// RenderPass tags a draw with the kind of output it produces. The tag is
// uploaded as a uniform; the vertex stage compares it against each object's
// packed pass flag and culls objects that do not participate by emitting a
// position outside the clip volume.
//
// The zero value means the object is not rendered in any pass.
type RenderPass uint8

// Render pass constants. Values are packed into the per-object flags texel
// by the layer builder, so they must stay stable across releases.
const (
	// PassNone marks an object that is not rendered at all.
	PassNone RenderPass = iota

	// PassColorOpaque is the main opaque color pass.
	PassColorOpaque

	// PassColorTransparent is the blended transparent color pass.
	PassColorTransparent

	// PassSilhouette renders highlighted/selected/x-rayed silhouettes.
	PassSilhouette

	// PassPick renders object-id colors for GPU picking.
	PassPick

	// PassOcclusion renders depth-only geometry for occlusion queries.
	PassOcclusion
)

// String returns a human-readable name for the render pass.
func (p RenderPass) String() string {
	switch p {
	case PassNone:
		return "None"
	case PassColorOpaque:
		return "ColorOpaque"
	case PassColorTransparent:
		return "ColorTransparent"
	case PassSilhouette:
		return "Silhouette"
	case PassPick:
		return "Pick"
	case PassOcclusion:
		return "Occlusion"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(p))
	}
}
