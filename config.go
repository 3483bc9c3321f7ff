package dtx

import (
	"fmt"
	"strconv"
)

// Config is the scene configuration snapshot: the subset of global
// rendering state that affects generated shader *text*, not just uniform
// values. It is read fresh each frame; renderers cache only the derived
// hash, never the snapshot itself.
//
// Two snapshots with the same Hash produce byte-identical shader source
// in both stages and both dialects.
type Config struct {
	// SectionPlaneCount is the number of section (clipping) planes the
	// scene declares. The generated source carries exactly this many
	// (active, position, direction) uniform triples, indices 0..N-1.
	SectionPlaneCount int

	// LogDepth enables the logarithmic depth buffer remap.
	LogDepth bool

	// LogDepthSupported reports whether the platform can write
	// gl_FragDepth. Log-depth code is emitted only when both LogDepth
	// and LogDepthSupported are set.
	LogDepthSupported bool

	// VertexOffsets enables the per-object positional offset fetch in
	// the vertex stage.
	VertexOffsets bool
}

// LogDepthEnabled reports whether log-depth code is emitted: the feature
// must be both requested and supported by the platform.
func (c Config) LogDepthEnabled() bool {
	return c.LogDepth && c.LogDepthSupported
}

// Hash derives the configuration key used to tag compiled programs.
// It encodes every value that changes generated source, and nothing else:
// LogDepth and LogDepthSupported only matter through their conjunction,
// so only the conjunction is encoded.
func (c Config) Hash() string {
	return fmt.Sprintf("planes:%d;logdepth:%s;offsets:%s",
		c.SectionPlaneCount,
		strconv.FormatBool(c.LogDepthEnabled()),
		strconv.FormatBool(c.VertexOffsets))
}
