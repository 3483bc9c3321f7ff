// Package render drives layer drawing: program lifecycle, layer texture
// upload, per-draw uniform state, and bucket dispatch.
//
// The package is backend-neutral. All GPU work goes through the Device
// interface; backend/gl and backend/wgpu implement it. Tests exercise
// the full draw path against a recording mock device.
package render
