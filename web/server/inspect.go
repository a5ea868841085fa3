package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit          bool
	Intersection geometry.Intersection
	Shape        geometry.Shape // nil when no object reproduces the hit
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	c := v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes the fields that matter for the material's kind
func extractMaterialInfo(mat *material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if mat == nil {
		return "none", properties
	}

	switch mat.Kind {
	case material.KindLambert, material.KindEmissive, material.KindUnlit:
		properties["albedo"] = vec3Array(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)

	case material.KindReflective:
		properties["albedo"] = vec3Array(mat.Albedo)
		properties["color"] = hexColor(mat.Albedo)
		properties["specular"] = vec3Array(mat.Specular)
		properties["shininess"] = mat.Shininess
		properties["roughness"] = mat.Roughness
		properties["metallic"] = mat.Metallic
		if !mat.Metallic {
			properties["ambient"] = vec3Array(mat.Ambient)
		}

	case material.KindRefractive:
		properties["ior"] = mat.IOR
		properties["color"] = "#ffffff"
	}
	properties["transparency"] = mat.Transparency

	return mat.Kind.String(), properties
}

// extractGeometryInfo describes the shape that was hit
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if shape == nil {
		return "unknown", properties
	}

	bbox := shape.BoundingBox()
	properties["boundingBox"] = map[string]interface{}{
		"min": vec3Array(bbox.Min),
		"max": vec3Array(bbox.Max),
	}

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(geom.Center())
	case *geometry.Plane:
		properties["normal"] = vec3Array(geom.Normal)
		properties["scale"] = [2]float64{geom.Scale.X, geom.Scale.Y}
	case *geometry.Box:
		properties["min"] = vec3Array(geom.Min)
		properties["max"] = vec3Array(geom.Max)
	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec3Array(geom.V0), vec3Array(geom.V1), vec3Array(geom.V2)}
	case *geometry.Mesh:
		properties["triangleCount"] = len(geom.Triangles)
	}

	return geometry.Kind(shape), properties
}

// inspectPixel casts a ray through the center of the pixel and reports the first hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	camera := sceneObj.Camera()
	if camera == nil {
		return InspectResult{}
	}

	u := (float64(pixelX) + 0.5) / float64(width)
	v := 1 - (float64(pixelY)+0.5)/float64(height)
	ray := camera.GetRay(u, v)

	hit, ok := sceneObj.ClosestHit(ray)
	if !ok {
		return InspectResult{}
	}

	// ClosestHit does not report which object won; find the one that reproduces it
	for _, shape := range sceneObj.Objects {
		if shapeHit, shapeOK := shape.Hit(ray); shapeOK && shapeHit.Distance == hit.Distance {
			return InspectResult{Hit: true, Intersection: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, Intersection: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(c.QueryParams(), req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
	}

	pixelX, err := strconv.Atoi(c.QueryParam("x"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid x coordinate")
	}
	pixelY, err := strconv.Atoi(c.QueryParam("y"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid y coordinate")
	}
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		return errorResponse(c, http.StatusBadRequest, "Pixel coordinates out of bounds")
	}

	sceneObj, err := req.Definition.Build(req.Config)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err.Error())
	}

	result := inspectPixel(sceneObj, req.Width, req.Height, pixelX, pixelY)
	if !result.Hit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(result.Intersection.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec3Array(result.Intersection.Point),
		Normal:       vec3Array(result.Intersection.Normal),
		Distance:     result.Intersection.Distance,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
