// Package soft executes the layer decode pipeline on the CPU: the same
// texel fetches, pass filtering, matrix reconstruction, backface
// handling, and transforms the generated vertex stage performs, plus a
// minimal rasterizer.
//
// It exists for two reasons: headless tests get an executable ground
// truth for decode semantics without a GPU, and cmd/dtxdemo renders
// preview images anywhere. All arithmetic is float32 to match GPU
// behavior.
package soft
