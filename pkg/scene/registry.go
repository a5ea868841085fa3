package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/config"
)

// ErrUnknownScene is returned by Lookup for names not in the registry
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// Definition is a registered scene: its metadata, the render options it was
// tuned for and a builder
type Definition struct {
	Info      SceneInfo
	configure func(*config.Render)
	build     func(config.Render) (*Scene, error)
}

// Recommended applies the scene's preferred options on top of base
func (d Definition) Recommended(base config.Render) config.Render {
	if d.configure != nil {
		d.configure(&base)
	}
	return base
}

// Build creates a fresh scene for the given configuration
func (d Definition) Build(cfg config.Render) (*Scene, error) {
	s, err := d.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene %q: %w", d.Info.ID, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", d.Info.ID, err)
	}
	return s, nil
}

const builtInGroup = "Built-in Scenes"
const testGroup = "Test Scenes"

var registry = map[string]Definition{
	"cornell": {
		Info: SceneInfo{
			ID:          "cornell",
			DisplayName: "Cornell Box",
			Description: "Cornell box with metallic, glass and ellipsoid objects",
			Group:       builtInGroup,
		},
		configure: configureCornell,
		build:     NewCornellScene,
	},
	"default": {
		Info: SceneInfo{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "Every material and primitive under an area light",
			Group:       builtInGroup,
		},
		configure: configureDefault,
		build:     NewDefaultScene,
	},
	"mesh": {
		Info: SceneInfo{
			ID:          "mesh",
			DisplayName: "Imported Mesh",
			Description: "OBJ mesh through an orthographic camera",
			Group:       builtInGroup,
		},
		configure: configureMesh,
		build: func(cfg config.Render) (*Scene, error) {
			return NewMeshScene(cfg, "")
		},
	},
	"sphere": {
		Info: SceneInfo{
			ID:          "sphere",
			DisplayName: "Lambert Sphere",
			Description: "Single diffuse sphere lit from above",
			Group:       testGroup,
		},
		configure: configureDeterministic,
		build:     NewSphereScene,
	},
	"mirror": {
		Info: SceneInfo{
			ID:          "mirror",
			DisplayName: "Mirror Sphere",
			Description: "Perfect mirror sphere above a flat-colored floor",
			Group:       testGroup,
		},
		configure: configureMirror,
		build:     NewMirrorScene,
	},
}

// Lookup returns the scene registered under name
func Lookup(name string) (Definition, error) {
	def, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
	}
	return def, nil
}

// Names returns every registered scene name, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns the registered scenes grouped by category, built-in first
func ListScenes() ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, name := range Names() {
		info := registry[name].Info
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if scenes, exists := groupMap[builtInGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtInGroup, Scenes: scenes})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}
	return response
}
