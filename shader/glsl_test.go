package shader

import (
	"strings"
	"testing"

	"github.com/gpuviz/dtx"
)

func join(lines []string) string { return strings.Join(lines, "\n") }

func TestVertexSourceDeterministic(t *testing.T) {
	cfg := dtx.Config{SectionPlaneCount: 3, LogDepth: true, LogDepthSupported: true, VertexOffsets: true}
	a := join(VertexSource(cfg))
	b := join(VertexSource(cfg))
	if a != b {
		t.Fatal("two generations for the same configuration differ")
	}
	// Equal hash implies equal source even across distinct values.
	other := dtx.Config{SectionPlaneCount: 3, LogDepth: true, LogDepthSupported: true, VertexOffsets: true}
	if cfg.Hash() != other.Hash() {
		t.Fatal("hashes differ for identical configurations")
	}
	if join(VertexSource(other)) != a {
		t.Fatal("equal hashes produced different source")
	}
}

func TestVertexSourceConditionals(t *testing.T) {
	tests := []struct {
		name    string
		cfg     dtx.Config
		want    []string
		notWant []string
	}{
		{
			name: "base",
			cfg:  dtx.Config{},
			want: []string{
				"#version 300 es",
				"gl_Position = vec4(3.0, 3.0, 3.0, 1.0);",
				"return (m[2][3] == - 1.0);",
			},
			notWant: []string{SamplerObjectOffsets, "vFragDepth", ULogDepthBufFC},
		},
		{
			name: "offsets",
			cfg:  dtx.Config{VertexOffsets: true},
			want: []string{
				"uniform highp sampler2D " + SamplerObjectOffsets + ";",
				"worldPosition.xyz = worldPosition.xyz + objectOffset.xyz;",
			},
		},
		{
			name: "logdepth enabled and supported",
			cfg:  dtx.Config{LogDepth: true, LogDepthSupported: true},
			want: []string{
				"uniform float " + ULogDepthBufFC + ";",
				"vFragDepth = 1.0 + clipPos.w;",
				"isPerspective = float(isPerspectiveMatrix(" + UProjMatrix + "));",
			},
		},
		{
			name:    "logdepth enabled but unsupported",
			cfg:     dtx.Config{LogDepth: true},
			notWant: []string{"vFragDepth", ULogDepthBufFC},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := join(VertexSource(tt.cfg))
			for _, s := range tt.want {
				if !strings.Contains(src, s) {
					t.Errorf("missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(src, s) {
					t.Errorf("unexpected %q", s)
				}
			}
		})
	}
}

func TestVertexSourceDecodeOrder(t *testing.T) {
	src := join(VertexSource(dtx.Config{}))

	// The pass filter must run before any position fetch, and the
	// alpha cull after the normal computation.
	passAt := strings.Index(src, "!= "+URenderPass)
	coordAt := strings.Index(src, SamplerVertexCoords+", ivec2(indexPositionH.x")
	normalAt := strings.Index(src, "normal = normalize(cross(")
	alphaAt := strings.Index(src, "color.a == 0u")
	solidAt := strings.Index(src, "ivec2(5, objectIndex)")
	for name, at := range map[string]int{"pass filter": passAt, "coord fetch": coordAt, "normal": normalAt, "alpha cull": alphaAt, "solid fetch": solidAt} {
		if at < 0 {
			t.Fatalf("%s not found", name)
		}
	}
	if !(passAt < coordAt && coordAt < normalAt && normalAt < alphaAt && alphaAt < solidAt) {
		t.Errorf("decode steps out of order: pass=%d coord=%d normal=%d alpha=%d solid=%d",
			passAt, coordAt, normalAt, alphaAt, solidAt)
	}
}

func TestVertexSourceBackfaceBranches(t *testing.T) {
	src := join(VertexSource(dtx.Config{}))
	for _, s := range []string{
		"if (solid != 1u)",
		"cameraEyeRtcInQuantizedSpace",
		"dot(position.xyz - cameraEyeRtcInQuantizedSpace, normal) < 0.0",
		"viewNormal.z < 0.0",
		"positions[2 - (gl_VertexID % 3)]",
		"normal = -normal;",
	} {
		if !strings.Contains(src, s) {
			t.Errorf("missing %q", s)
		}
	}
}

func TestFragmentSourcePlaneUnrolling(t *testing.T) {
	const n = 4
	src := join(FragmentSource(dtx.Config{SectionPlaneCount: n}))

	last := -1
	for i := 0; i < n; i++ {
		for _, name := range []string{SectionPlaneActive(i), SectionPlanePos(i), SectionPlaneDir(i)} {
			if c := strings.Count(src, "uniform bool "+SectionPlaneActive(i)+";"); i == 0 && c != 1 {
				t.Errorf("active uniform for plane 0 declared %d times", c)
			}
			if !strings.Contains(src, name) {
				t.Fatalf("missing plane uniform %q", name)
			}
		}
		// Evaluation order follows plane index.
		at := strings.Index(src, "if ("+SectionPlaneActive(i)+") {")
		if at < 0 {
			t.Fatalf("plane %d test branch missing", i)
		}
		if at <= last {
			t.Errorf("plane %d evaluated before plane %d", i, i-1)
		}
		last = at
	}
	if !strings.Contains(src, "if (vFlags2 > 0u) {") {
		t.Error("clippable gate missing")
	}
	if !strings.Contains(src, "discard;") {
		t.Error("discard missing")
	}
}

func TestFragmentSourceNoPlanes(t *testing.T) {
	src := join(FragmentSource(dtx.Config{}))
	if strings.Contains(src, "discard") {
		t.Error("plane-free source should not discard")
	}
	if strings.Contains(src, "sectionPlane") {
		t.Error("plane-free source declares plane uniforms")
	}
}

func TestFragmentSourceLogDepth(t *testing.T) {
	src := join(FragmentSource(dtx.Config{LogDepth: true, LogDepthSupported: true}))
	want := "gl_FragDepth = isPerspective == 0.0 ? gl_FragCoord.z : log2( vFragDepth ) * " + ULogDepthBufFC + " * 0.5;"
	if !strings.Contains(src, want) {
		t.Errorf("missing %q", want)
	}
	if src := join(FragmentSource(dtx.Config{})); strings.Contains(src, "gl_FragDepth") {
		t.Error("depth write emitted without log depth")
	}
}
