package marquee

import "github.com/chewxy/math32"

// expandPositions widens a flat 2D or 3D vertex list to xyz triples.
func expandPositions(flat []float32, dim int) []float32 {
	if dim == 3 {
		n := len(flat) / 3
		return flat[:n*3]
	}
	n := len(flat) / 2
	out := make([]float32, n*3)
	for i := range n {
		out[i*3] = flat[i*2]
		out[i*3+1] = flat[i*2+1]
	}
	return out
}

// fanIndices triangulates a convex polygon of n vertices around vertex 0.
// N vertices, 3*(N-2) indices.
func fanIndices(n int) []uint16 {
	if n < 3 {
		return nil
	}
	inds := make([]uint16, (n-2)*3)
	for i := 0; i < n-2; i++ {
		inds[i*3+0] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(i + 2)
	}
	return inds
}

// outlineIndices returns a closed line loop as segment pairs.
func outlineIndices(n int) []uint16 {
	if n < 2 {
		return nil
	}
	inds := make([]uint16, 0, n*2)
	for i := range n {
		inds = append(inds, uint16(i), uint16((i+1)%n))
	}
	if n == 2 {
		inds = inds[:2]
	}
	return inds
}

// sequentialIndices returns 0..n-1 truncated to whole triangles.
func sequentialIndices(n int) []uint16 {
	n -= n % 3
	inds := make([]uint16, n)
	for i := range inds {
		inds[i] = uint16(i)
	}
	return inds
}

// quadGeometry returns a w x h quad with its top-left at the origin and
// UVs spanning (u0, v0)-(u1, v1).
func quadGeometry(w, h, u0, v0, u1, v1 float32) Geometry {
	return Geometry{
		Positions: []float32{0, 0, 0, w, 0, 0, w, h, 0, 0, h, 0},
		UVs:       []float32{u0, v0, u1, v0, u1, v1, u0, v1},
		Indices:   []uint16{0, 1, 2, 0, 2, 3},
	}
}

// ComputeNormals returns smooth per-vertex normals for an indexed triangle
// list by summing area-weighted face normals. Vertices that belong to no
// triangle get (0, 0, 1).
func ComputeNormals(positions []float32, indices []uint16) []float32 {
	n := len(positions) / 3
	out := make([]float32, n*3)
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := int(indices[t]), int(indices[t+1]), int(indices[t+2])
		if a >= n || b >= n || c >= n {
			continue
		}
		pa := Vec3{positions[a*3], positions[a*3+1], positions[a*3+2]}
		pb := Vec3{positions[b*3], positions[b*3+1], positions[b*3+2]}
		pc := Vec3{positions[c*3], positions[c*3+1], positions[c*3+2]}
		fn := pb.Sub(pa).Cross(pc.Sub(pa))
		for _, v := range [3]int{a, b, c} {
			out[v*3] += fn[0]
			out[v*3+1] += fn[1]
			out[v*3+2] += fn[2]
		}
	}
	for i := range n {
		v := Vec3{out[i*3], out[i*3+1], out[i*3+2]}
		l := v.Len()
		if l < 1e-12 {
			out[i*3], out[i*3+1], out[i*3+2] = 0, 0, 1
			continue
		}
		out[i*3], out[i*3+1], out[i*3+2] = v[0]/l, v[1]/l, v[2]/l
	}
	return out
}

// LocalBounds returns the xy bounding box of an xyz position list.
func LocalBounds(positions []float32) Bounds {
	if len(positions) < 3 {
		return Bounds{}
	}
	minX, minY := positions[0], positions[1]
	maxX, maxY := minX, minY
	for i := 3; i+2 < len(positions); i += 3 {
		x, y := positions[i], positions[i+1]
		minX, maxX = math32.Min(minX, x), math32.Max(maxX, x)
		minY, maxY = math32.Min(minY, y), math32.Max(maxY, y)
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// uvExtent returns the per-axis minimum and maximum of a uv pair list.
// An empty list reports the unit square.
func uvExtent(uvs []float32) (lo, hi [2]float32) {
	if len(uvs) < 2 {
		return [2]float32{0, 0}, [2]float32{1, 1}
	}
	lo = [2]float32{uvs[0], uvs[1]}
	hi = lo
	for i := 2; i+1 < len(uvs); i += 2 {
		lo[0], hi[0] = math32.Min(lo[0], uvs[i]), math32.Max(hi[0], uvs[i])
		lo[1], hi[1] = math32.Min(lo[1], uvs[i+1]), math32.Max(hi[1], uvs[i+1])
	}
	return lo, hi
}

// GridGeometry builds a cols x rows grid of cells spanning w x h in the XY
// plane with UVs over [0,1]. Vertices = (cols+1) * (rows+1).
func GridGeometry(cols, rows int, w, h float32) Geometry {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	vc := (cols + 1) * (rows + 1)
	g := Geometry{
		Positions: make([]float32, 0, vc*3),
		Normals:   make([]float32, 0, vc*3),
		UVs:       make([]float32, 0, vc*2),
		Indices:   make([]uint16, 0, cols*rows*6),
	}
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			u, v := float32(c)/float32(cols), float32(r)/float32(rows)
			g.Positions = append(g.Positions, u*w, v*h, 0)
			g.Normals = append(g.Normals, 0, 0, -1)
			g.UVs = append(g.UVs, u, v)
		}
	}
	stride := uint16(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			tl := uint16(r)*stride + uint16(c)
			tr, bl := tl+1, tl+stride
			br := bl + 1
			g.Indices = append(g.Indices, tl, tr, br, tl, br, bl)
		}
	}
	return g
}

// BoxGeometry builds an axis-aligned box centered on the origin with flat
// per-face normals and a full [0,1] UV square on each face.
func BoxGeometry(w, h, d float32) Geometry {
	x, y, z := w/2, h/2, d/2
	faces := [6]struct {
		n       Vec3
		corners [4]Vec3
	}{
		{Vec3{0, 0, 1}, [4]Vec3{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{Vec3{0, 0, -1}, [4]Vec3{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
		{Vec3{1, 0, 0}, [4]Vec3{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{Vec3{-1, 0, 0}, [4]Vec3{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{Vec3{0, 1, 0}, [4]Vec3{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{Vec3{0, -1, 0}, [4]Vec3{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
	}
	var g Geometry
	for i, f := range faces {
		for _, c := range f.corners {
			g.Positions = append(g.Positions, c[0], c[1], c[2])
			g.Normals = append(g.Normals, f.n[0], f.n[1], f.n[2])
		}
		g.UVs = append(g.UVs, 0, 0, 1, 0, 1, 1, 0, 1)
		b := uint16(i * 4)
		g.Indices = append(g.Indices, b, b+1, b+2, b, b+2, b+3)
	}
	return g
}
