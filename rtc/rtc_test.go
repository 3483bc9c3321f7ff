package rtc

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookAt() mgl64.Mat4 {
	return mgl64.LookAtV(
		mgl64.Vec3{10, 20, 30},
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{0, 1, 0},
	)
}

func TestViewMatrixZeroOriginIsPassthrough(t *testing.T) {
	view := lookAt()
	got := ViewMatrix(mgl64.Vec3{}, mgl64.Vec3{}, nil, view)
	assert.Equal(t, view, got, "zero origin and position must return the input matrix unmodified")
}

func TestEyeZeroOriginIsPassthrough(t *testing.T) {
	eye := mgl64.Vec3{10, 20, 30}
	assert.Equal(t, eye, Eye(mgl64.Vec3{}, mgl64.Vec3{}, nil, eye))
}

func TestViewMatrixComposesTranslation(t *testing.T) {
	view := lookAt()
	origin := mgl64.Vec3{1e6, 2e6, -5e5}
	position := mgl64.Vec3{3, -7, 11}

	got := ViewMatrix(origin, position, nil, view)

	c := origin.Add(position)
	want := view.Mul4(mgl64.Translate3D(c[0], c[1], c[2]))
	assert.Equal(t, want, got)

	// A world point p maps through the original view the same way the
	// RTC point p-c maps through the rebased view.
	p := mgl64.Vec3{1e6 + 10, 2e6 - 4, -5e5 + 2}
	world := view.Mul4x1(p.Vec4(1))
	rel := got.Mul4x1(p.Sub(c).Vec4(1))
	for i := 0; i < 4; i++ {
		assert.InDelta(t, world[i], rel[i], 1e-6)
	}
}

func TestViewMatrixRotatesOriginFirst(t *testing.T) {
	view := lookAt()
	origin := mgl64.Vec3{100, 0, 0}
	rot := mgl64.HomogRotate3DY(mgl64.DegToRad(90))

	got := ViewMatrix(origin, mgl64.Vec3{}, &rot, view)

	rotated := rot.Mul4x1(origin.Vec4(1)).Vec3()
	want := view.Mul4(mgl64.Translate3D(rotated[0], rotated[1], rotated[2]))
	for i := 0; i < 16; i++ {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestEyeSubtractsCenter(t *testing.T) {
	origin := mgl64.Vec3{500, 0, 0}
	position := mgl64.Vec3{0, 50, 0}
	eye := mgl64.Vec3{510, 60, -5}

	got := Eye(origin, position, nil, eye)
	assert.Equal(t, mgl64.Vec3{10, 10, -5}, got)
}

func TestPlanePosition(t *testing.T) {
	tests := []struct {
		name     string
		origin   mgl64.Vec3
		position mgl64.Vec3
		plane    mgl64.Vec3
		want     mgl64.Vec3
	}{
		{
			name:  "zero center is passthrough",
			plane: mgl64.Vec3{1, 2, 3},
			want:  mgl64.Vec3{1, 2, 3},
		},
		{
			name:   "origin only",
			origin: mgl64.Vec3{100, 0, 0},
			plane:  mgl64.Vec3{101, 2, 3},
			want:   mgl64.Vec3{1, 2, 3},
		},
		{
			name:     "origin and position",
			origin:   mgl64.Vec3{100, 0, 0},
			position: mgl64.Vec3{0, 10, 0},
			plane:    mgl64.Vec3{100, 10, 0},
			want:     mgl64.Vec3{0, 0, 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PlanePosition(tt.origin, tt.position, nil, tt.plane)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebasePreservesPrecisionAtLargeExtent(t *testing.T) {
	// At a 1e7 world offset, float32 spacing is ~1. Rebasing must keep
	// nearby points distinguishable after narrowing to float32.
	origin := mgl64.Vec3{1e7, 1e7, 0}
	view := lookAt()
	rebased := ViewMatrix(origin, mgl64.Vec3{}, nil, view)

	a := mgl64.Vec3{0.125, 0, 0}
	b := mgl64.Vec3{0.250, 0, 0}
	va := rebased.Mul4x1(a.Vec4(1))
	vb := rebased.Mul4x1(b.Vec4(1))

	require.NotEqual(t, float32(va[0]), float32(vb[0]),
		"rebased coordinates must remain distinct in float32")
}
