package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// ErrMalformed is returned (wrapped, with the offending line) when an OBJ file cannot be parsed
var ErrMalformed = errors.New("malformed OBJ")

// ErrSingularTransform is returned when the placement transform cannot be inverted for normals
var ErrSingularTransform = errors.New("mesh transform is not invertible")

// OBJData is the raw content of an OBJ file before placement
type OBJData struct {
	Vertices []core.Vec3
	Normals  []core.Vec3
	Faces    [][]FaceVertex // Polygons, three or more corners each
}

// FaceVertex indexes one polygon corner. Indices are zero-based; Normal is -1 when absent.
type FaceVertex struct {
	Vertex int
	Normal int
}

// ParseOBJ reads vertices, vertex normals and faces. Statements the renderer has no use for
// (objects, groups, smoothing, materials, texture coordinates) are skipped.
func ParseOBJ(r io.Reader) (*OBJData, error) {
	data := &OBJData{}
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v core.Vec3
			v, err = parseVec3(fields[1:])
			data.Vertices = append(data.Vertices, v)
		case "vn":
			var n core.Vec3
			n, err = parseVec3(fields[1:])
			data.Normals = append(data.Normals, n)
		case "f":
			var face []FaceVertex
			face, err = data.parseFace(fields[1:])
			data.Faces = append(data.Faces, face)
		case "vt", "o", "g", "s", "usemtl", "mtllib", "l", "p":
			// Not needed for rendering
		default:
			err = fmt.Errorf("unknown statement %q", fields[0])
		}

		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNumber, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ: %w", err)
	}
	return data, nil
}

// parseVec3 parses exactly three floats; a fourth (w) component is tolerated on vertices
func parseVec3(fields []string) (core.Vec3, error) {
	if len(fields) < 3 || len(fields) > 4 {
		return core.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}

	var xyz [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid number %q", fields[i])
		}
		xyz[i] = v
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

// parseFace accepts v, v/t, v//n and v/t/n corners. Indices refer to elements already read.
func (d *OBJData) parseFace(fields []string) ([]FaceVertex, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}

	face := make([]FaceVertex, 0, len(fields))
	for _, field := range fields {
		parts := strings.Split(field, "/")
		if len(parts) > 3 {
			return nil, fmt.Errorf("invalid face vertex %q", field)
		}

		vertex, err := resolveIndex(parts[0], len(d.Vertices))
		if err != nil {
			return nil, fmt.Errorf("vertex index in %q: %v", field, err)
		}

		normal := -1
		if len(parts) == 3 && parts[2] != "" {
			normal, err = resolveIndex(parts[2], len(d.Normals))
			if err != nil {
				return nil, fmt.Errorf("normal index in %q: %v", field, err)
			}
		}

		face = append(face, FaceVertex{Vertex: vertex, Normal: normal})
	}
	return face, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a slice index
func resolveIndex(s string, count int) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	if index < 0 {
		index = count + index + 1
	}
	if index < 1 || index > count {
		return 0, fmt.Errorf("index %s out of range (have %d)", s, count)
	}
	return index - 1, nil
}

// Triangles places the parsed polygons in world space. Polygons are split into fans;
// corners without a normal use the face normal.
func (d *OBJData) Triangles(transform core.Transform, mat *material.Material) ([]*geometry.Triangle, error) {
	if !transform.Invertible() {
		return nil, ErrSingularTransform
	}

	vertices := make([]core.Vec3, len(d.Vertices))
	for i, v := range d.Vertices {
		vertices[i] = transform.ApplyPoint(v)
	}
	normals := make([]core.Vec3, len(d.Normals))
	for i, n := range d.Normals {
		normals[i] = transform.ApplyNormal(n)
	}

	var triangles []*geometry.Triangle
	for _, face := range d.Faces {
		for i := 1; i < len(face)-1; i++ {
			corners := [3]FaceVertex{face[0], face[i], face[i+1]}
			v0, v1, v2 := vertices[corners[0].Vertex], vertices[corners[1].Vertex], vertices[corners[2].Vertex]

			if corners[0].Normal < 0 || corners[1].Normal < 0 || corners[2].Normal < 0 {
				triangles = append(triangles, geometry.NewTriangle(v0, v1, v2, mat))
				continue
			}
			triangles = append(triangles, geometry.NewTriangleWithNormals(
				v0, v1, v2,
				normals[corners[0].Normal], normals[corners[1].Normal], normals[corners[2].Normal],
				mat,
			))
		}
	}
	return triangles, nil
}

// LoadOBJ parses an OBJ stream and returns its triangles in world space.
// Any malformed line aborts the whole import.
func LoadOBJ(r io.Reader, transform core.Transform, mat *material.Material) ([]*geometry.Triangle, error) {
	data, err := ParseOBJ(r)
	if err != nil {
		return nil, err
	}
	return data.Triangles(transform, mat)
}

// LoadOBJFile loads an OBJ file and wraps its triangles in a mesh
func LoadOBJFile(filename string, transform core.Transform, mat *material.Material) (*geometry.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	triangles, err := LoadOBJ(file, transform, mat)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return geometry.NewMesh(triangles), nil
}
