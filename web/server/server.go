package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

const (
	minImageSize = 16
	maxImageSize = 2000
	maxPasses    = 10000
	maxAASamples = 64
	maxTileSize  = 512

	// ThumbnailSize bounds the pass preview sent with each pass event
	ThumbnailSize = 256
)

// Server handles web requests for the tile raytracer
type Server struct {
	port   int
	base   config.Render
	echo   *echo.Echo
	logger core.Logger
}

// NewServer creates a new web server. base holds the settings every request
// starts from before scene recommendations and query parameters apply.
func NewServer(port int, base config.Render, logger core.Logger) *Server {
	if logger == nil {
		logger = core.NopLogger{}
	}

	s := &Server{port: port, base: base, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(corsMiddleware)

	e.GET("/", s.handleIndex)
	e.GET("/api/health", s.handleHealth)
	e.GET("/api/scenes", s.handleScenes)
	e.GET("/api/scene-config", s.handleSceneConfig)
	e.GET("/api/render", s.handleRender)
	e.GET("/api/inspect", s.handleInspect)

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s\n", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func corsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", "*")
		c.Response().Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Response().Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusOK)
		}

		return next(c)
	}
}

// errorResponse is the JSON body of every failed API call
func errorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// handleIndex lists the API routes; there is no bundled UI
func (s *Server) handleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name": "tile-raytracer",
		"endpoints": []string{
			"/api/health",
			"/api/scenes",
			"/api/scene-config?scene=<name>",
			"/api/render?scene=<name>",
			"/api/inspect?scene=<name>&x=<px>&y=<px>",
		},
	})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists every registered scene grouped for the UI
func (s *Server) handleScenes(c echo.Context) error {
	return c.JSON(http.StatusOK, scene.ListScenes())
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string  `json:"scene"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	MaxPasses   int     `json:"maxPasses"`
	AASamples   int     `json:"aaSamples"`
	TileSize    int     `json:"tileSize"`
	SoftShadows bool    `json:"softShadows"`
	UseGI       bool    `json:"useGI"`
	GIDepth     int     `json:"giDepth"`
	UseAO       bool    `json:"useAO"`
	AODistance  float64 `json:"aoDistance"`
	DebugLabel  bool    `json:"debugLabel"`

	Config     config.Render    `json:"-"`
	Definition scene.Definition `json:"-"`
}

// parseCommonSceneParams resolves the scene and its size. Query values
// override the scene's recommended configuration.
func (s *Server) parseCommonSceneParams(values url.Values, req *RenderRequest) error {
	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "cornell"
	}

	def, err := scene.Lookup(req.Scene)
	if err != nil {
		return err
	}
	req.Definition = def
	req.Config = def.Recommended(s.base)

	if req.Width, err = parseIntParam(values, "width", req.Config.Width, minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(values, "height", req.Config.Height, minImageSize, maxImageSize); err != nil {
		return err
	}
	req.Config.Width = req.Width
	req.Config.Height = req.Height
	return nil
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(values, req); err != nil {
		return nil, err
	}

	cfg := &req.Config
	var err error
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", cfg.MaxSamples, 1, maxPasses); err != nil {
		return nil, err
	}
	if req.AASamples, err = parseIntParam(values, "aaSamples", cfg.AASamples, 1, maxAASamples); err != nil {
		return nil, err
	}
	if req.TileSize, err = parseIntParam(values, "tileSize", cfg.TileSize, 4, maxTileSize); err != nil {
		return nil, err
	}
	if req.GIDepth, err = parseIntParam(values, "giDepth", cfg.GIDepth, 0, 16); err != nil {
		return nil, err
	}
	if req.SoftShadows, err = parseBoolParam(values, "softShadows", cfg.SoftShadows); err != nil {
		return nil, err
	}
	if req.UseGI, err = parseBoolParam(values, "useGI", cfg.UseGI); err != nil {
		return nil, err
	}
	if req.UseAO, err = parseBoolParam(values, "useAO", cfg.UseAO); err != nil {
		return nil, err
	}
	if req.DebugLabel, err = parseBoolParam(values, "debugLabel", cfg.DebugLabel); err != nil {
		return nil, err
	}
	if req.AODistance, err = parseFloatParam(values, "aoDistance", cfg.AODistance, 0.01, 100); err != nil {
		return nil, err
	}

	cfg.MaxSamples = req.MaxPasses
	cfg.AASamples = req.AASamples
	cfg.TileSize = req.TileSize
	cfg.GIDepth = req.GIDepth
	cfg.SoftShadows = req.SoftShadows
	cfg.UseGI = req.UseGI
	cfg.UseAO = req.UseAO
	cfg.DebugLabel = req.DebugLabel
	cfg.AODistance = req.AODistance

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.MaxPasses*req.AASamples > 100 {
		s.logger.Printf("Render warning: Large image with high samples may render slowly\n")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// handleSceneConfig returns the recommended configuration for a scene
func (s *Server) handleSceneConfig(c echo.Context) error {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(c.QueryParams(), req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error())
	}

	cfg := req.Config
	response := map[string]interface{}{
		"scene": req.Definition.Info,
		"defaults": map[string]interface{}{
			"width":         cfg.Width,
			"height":        cfg.Height,
			"maxPasses":     cfg.MaxSamples,
			"aaSamples":     cfg.AASamples,
			"aaFilterWidth": cfg.AAFilterWidth,
			"tileSize":      cfg.TileSize,
			"softShadows":   cfg.SoftShadows,
			"lightSamples":  cfg.LightSamples,
			"useGI":         cfg.UseGI,
			"giDepth":       cfg.GIDepth,
			"giSamples":     cfg.GISamples,
			"useAO":         cfg.UseAO,
			"aoSamples":     cfg.AOSamples,
			"aoDistance":    cfg.AODistance,
			"background":    config.FormatColor(cfg.Background),
			"ambientLight":  config.FormatColor(cfg.AmbientLight),
			"debugLabel":    cfg.DebugLabel,
		},
		"limits": map[string]interface{}{
			"width":     map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":    map[string]int{"min": minImageSize, "max": maxImageSize},
			"maxPasses": map[string]int{"min": 1, "max": maxPasses},
			"aaSamples": map[string]int{"min": 1, "max": maxAASamples},
			"tileSize":  map[string]int{"min": 4, "max": maxTileSize},
			"giDepth":   map[string]int{"min": 0, "max": 16},
		},
	}

	return c.JSON(http.StatusOK, response)
}
