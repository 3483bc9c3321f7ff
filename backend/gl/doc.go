// Package gl implements render.Device on desktop OpenGL through go-gl.
//
// The generated GLSL ES 3.00 source compiles on core-profile contexts
// with ES3 compatibility (GL 4.3+). Build with -tags nogl to exclude
// the cgo dependency.
package gl
