package dtx

import "github.com/go-gl/mathgl/mgl64"

// FrameContext carries the per-frame state shared by every layer draw:
// camera matrices from the scene collaborator, the live section-plane
// list, and the frame-scoped GPU binding state.
//
// A FrameContext has a single-writer contract: exactly one renderer
// mutates LastProgramID and DrawCalls at a time, in draw order. It is
// passed explicitly to every draw call rather than living in ambient
// global state.
type FrameContext struct {
	// ViewMatrix is the camera's absolute world-space view matrix.
	// Renderers rebase it per layer when an RTC origin is present.
	ViewMatrix mgl64.Mat4

	// ProjMatrix is the camera projection matrix.
	ProjMatrix mgl64.Mat4

	// Eye is the camera's world-space eye position.
	Eye mgl64.Vec3

	// LogDepthBufFC is the per-frame logarithmic depth far-plane
	// constant, 2 / log2(far + 1). Only consulted when the scene
	// configuration enables log depth.
	LogDepthBufFC float32

	// SectionPlanes is the scene's section-plane list, in stable plane
	// index order. Its length may be shorter than the configured plane
	// count; missing planes are treated as inactive.
	SectionPlanes []SectionPlane

	// LastProgramID is the identity of the most recently bound program.
	// Renderers bind their program only when it differs, so consecutive
	// layers sharing a renderer incur a single bind.
	LastProgramID uint64

	// DrawCalls counts draw invocations issued this frame, for
	// diagnostics.
	DrawCalls int
}

// Reset prepares the context for a new frame, clearing the binding state
// and the draw-call counter. Camera state is expected to be rewritten by
// the caller each frame.
func (fc *FrameContext) Reset() {
	fc.LastProgramID = 0
	fc.DrawCalls = 0
}
