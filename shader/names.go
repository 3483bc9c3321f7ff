package shader

import "strconv"

// Uniform names shared by generated source and the layer renderer.
// Backends resolve these to locations (GL) or block offsets (WGSL).
const (
	URenderPass       = "renderPass"
	USceneModelMatrix = "sceneModelMatrix"
	UViewMatrix       = "viewMatrix"
	UProjMatrix       = "projMatrix"
	UCameraEyeRTC     = "cameraEyeRtc"
	ULogDepthBufFC    = "logDepthBufFC"
)

// Sampler names, one per texture of the texel scene encoding. Texture
// unit assignment is the renderer's, stable per draw.
const (
	SamplerObjectAttributes       = "texObjectAttributes"
	SamplerObjectDecodeMatrices   = "texObjectDecodeMatrices"
	SamplerObjectInstanceMatrices = "texObjectInstanceMatrices"
	SamplerObjectOffsets          = "texObjectOffsets"
	SamplerVertexCoords           = "texVertexCoords"
	SamplerPolygonIndices         = "texPolygonIndices"
	SamplerPortionIDs             = "texPortionIds"
)

// SectionPlaneActive returns the name of plane i's active-flag uniform.
func SectionPlaneActive(i int) string {
	return "sectionPlaneActive" + strconv.Itoa(i)
}

// SectionPlanePos returns the name of plane i's position uniform.
func SectionPlanePos(i int) string {
	return "sectionPlanePos" + strconv.Itoa(i)
}

// SectionPlaneDir returns the name of plane i's direction uniform.
func SectionPlaneDir(i int) string {
	return "sectionPlaneDir" + strconv.Itoa(i)
}
