package model

// Cube returns the vertices and indices of an axis-aligned cube of the given edge length
// centred on the origin, with per-face normals and UVs.
func Cube(size float32) ([]Vertex, []uint32) {
	h := size / 2
	faces := [6]struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, Vertex{
				Position: c,
				Normal:   f.normal,
				TexCoord: uvs[i],
				Color:    [4]float32{1, 1, 1, 1},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

// Quad returns a unit quad in the XY plane facing +Z, centred on the origin.
func Quad() ([]Vertex, []uint32) {
	vertices := []Vertex{
		{Position: [3]float32{-0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}, Color: [4]float32{1, 1, 1, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}, Color: [4]float32{1, 1, 1, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}, Color: [4]float32{1, 1, 1, 1}},
		{Position: [3]float32{-0.5, 0.5, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}, Color: [4]float32{1, 1, 1, 1}},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}
