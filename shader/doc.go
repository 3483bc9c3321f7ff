// Package shader synthesizes shader source for texture-encoded layers.
//
// Generation is a pure function of the scene configuration snapshot
// (dtx.Config): two snapshots with equal derived hash produce
// byte-identical source, in both stages and both dialects. The hash is
// the only cache key — consumers that cache compiled programs across
// sessions rely on every conditional branch here being reproduced
// exactly, comment lines included.
//
// The primary dialect is GLSL ES 3.00 (backend/gl). A WGSL dialect with
// an explicit uniform-block layout serves backend/wgpu.
package shader
