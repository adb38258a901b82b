package marquee

import (
	"reflect"
	"testing"
)

func TestExpandPositions(t *testing.T) {
	got := expandPositions([]float32{1, 2, 3, 4, 5}, 2)
	if !reflect.DeepEqual(got, []float32{1, 2, 0, 3, 4, 0}) {
		t.Errorf("2D = %v", got)
	}
	got = expandPositions([]float32{1, 2, 3, 4}, 3)
	if !reflect.DeepEqual(got, []float32{1, 2, 3}) {
		t.Errorf("3D = %v", got)
	}
}

func TestFanIndices(t *testing.T) {
	if got := fanIndices(2); got != nil {
		t.Errorf("fan(2) = %v, want nil", got)
	}
	got := fanIndices(5)
	want := []uint16{0, 1, 2, 0, 2, 3, 0, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fan(5) = %v, want %v", got, want)
	}
}

func TestOutlineIndices(t *testing.T) {
	if got := outlineIndices(2); !reflect.DeepEqual(got, []uint16{0, 1}) {
		t.Errorf("outline(2) = %v", got)
	}
	if got := outlineIndices(3); !reflect.DeepEqual(got, []uint16{0, 1, 1, 2, 2, 0}) {
		t.Errorf("outline(3) = %v", got)
	}
	if got := outlineIndices(1); got != nil {
		t.Errorf("outline(1) = %v", got)
	}
}

func TestSequentialIndices(t *testing.T) {
	if got := sequentialIndices(7); len(got) != 6 || got[5] != 5 {
		t.Errorf("sequential(7) = %v", got)
	}
}

func TestComputeNormals(t *testing.T) {
	// One counter-clockwise triangle in the XY plane faces +Z.
	pos := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 5, 5, 5}
	n := ComputeNormals(pos, []uint16{0, 1, 2})
	for v := range 3 {
		assertPoint(t, Vec3{n[v*3], n[v*3+1], n[v*3+2]}, 0, 0, 1)
	}
	// The unused vertex gets the fallback.
	assertPoint(t, Vec3{n[9], n[10], n[11]}, 0, 0, 1)
}

func TestComputeNormalsIgnoresBadIndices(t *testing.T) {
	n := ComputeNormals([]float32{0, 0, 0}, []uint16{0, 5, 9})
	assertPoint(t, Vec3{n[0], n[1], n[2]}, 0, 0, 1)
}

func TestLocalBounds(t *testing.T) {
	b := LocalBounds([]float32{-1, 2, 0, 3, -4, 9, 0, 0, 0})
	if b != (Bounds{X: -1, Y: -4, Width: 4, Height: 6}) {
		t.Errorf("LocalBounds = %+v", b)
	}
	if (LocalBounds(nil) != Bounds{}) {
		t.Error("LocalBounds(nil) not zero")
	}
}

func TestGridGeometry(t *testing.T) {
	g := GridGeometry(2, 3, 20, 30)
	if g.VertexCount() != 12 || len(g.Indices) != 36 || len(g.UVs) != 24 {
		t.Fatalf("grid: %d vertices %d indices %d uvs", g.VertexCount(), len(g.Indices), len(g.UVs))
	}
	last := g.VertexCount() - 1
	if g.Positions[last*3] != 20 || g.Positions[last*3+1] != 30 {
		t.Errorf("far corner = (%v, %v)", g.Positions[last*3], g.Positions[last*3+1])
	}
	for _, i := range g.Indices {
		if int(i) >= g.VertexCount() {
			t.Fatalf("index %d out of range", i)
		}
	}
	if clamped := GridGeometry(0, -1, 1, 1); clamped.VertexCount() != 4 {
		t.Errorf("degenerate grid vertices = %d, want 4", clamped.VertexCount())
	}
}

func TestBoxGeometry(t *testing.T) {
	g := BoxGeometry(2, 4, 6)
	if g.VertexCount() != 24 || len(g.Indices) != 36 || len(g.Normals) != 72 {
		t.Fatalf("box: %d vertices %d indices %d normals", g.VertexCount(), len(g.Indices), len(g.Normals))
	}
	b := LocalBounds(g.Positions)
	if b != (Bounds{X: -1, Y: -2, Width: 2, Height: 4}) {
		t.Errorf("box bounds = %+v", b)
	}
	// Face winding agrees with the declared normals.
	computed := ComputeNormals(g.Positions, g.Indices)
	for i := 0; i < len(computed); i += 3 {
		got := Vec3{computed[i], computed[i+1], computed[i+2]}
		want := Vec3{g.Normals[i], g.Normals[i+1], g.Normals[i+2]}
		if got.Dot(want) < 0.5 {
			t.Errorf("vertex %d: computed normal %v disagrees with %v", i/3, got, want)
		}
	}
}
