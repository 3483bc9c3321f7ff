// Package datatex defines the texel scene encoding: the binary layout of
// per-object and per-polygon data packed into 2D textures.
//
// Each layer carries several same-shaped textures:
//
//   - an attributes texture with one 8-texel row per object: color,
//     flags, flags2, vertex-index base, polygon-index base offset, and
//     the solid flag;
//   - two matrix textures with one 4-texel row per object holding the
//     4x4 position decode matrix and the 4x4 instance matrix;
//   - a shared quantized vertex-coordinate texture;
//   - per index-width bucket (8/16/32-bit), a polygon index texture and
//     a polygon-to-object (portion id) lookup texture.
//
// Textures addressed by polygon or vertex index use a fixed row width of
// 4096 texels. This is an encoding constant baked into generated shader
// source, not reconfigurable at draw time.
//
// The renderer consumes layers read-only. Out-of-range object indices
// are a builder contract violation and are not handled defensively
// downstream.
package datatex
