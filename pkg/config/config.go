package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/joho/godotenv"
)

// ErrInvalid is returned (wrapped) by Validate for out-of-range options
var ErrInvalid = errors.New("invalid render configuration")

// Render holds every option that shapes a render
type Render struct {
	Width  int
	Height int

	MaxSamples    int     // Number of progressive passes
	AASamples     int     // Sub-samples per pixel per pass
	AAFilterWidth float64 // Jitter box width in pixels, ignored when AASamples == 1

	SoftShadows  bool
	LightSamples int

	UseGI     bool
	GIDepth   int
	GISamples int

	UseAO      bool
	AOSamples  int
	AODistance float64

	Background   core.Vec3
	AmbientLight core.Vec3
	DebugLabel   bool

	TileSize int
	Workers  int // 0 = one per logical CPU
	Seed     int64

	ExportEvery int // Export every N passes, 0 = final pass only
	OutputDir   string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3AccessKey string
	S3SecretKey string
}

// Default returns the configuration used when nothing else is specified
func Default() Render {
	return Render{
		Width:         400,
		Height:        400,
		MaxSamples:    128,
		AASamples:     2,
		AAFilterWidth: 1.2,
		SoftShadows:   false,
		LightSamples:  1,
		UseGI:         true,
		GIDepth:       5,
		GISamples:     1,
		UseAO:         false,
		AOSamples:     1,
		AODistance:    1.5,
		Background:    core.NewVec3(0.5, 0.5, 0.5),
		AmbientLight:  core.NewVec3(0.01, 0.01, 0.01),
		DebugLabel:    false,
		TileSize:      32,
		Workers:       0,
		Seed:          42,
		ExportEvery:   0,
		OutputDir:     "output",
	}
}

// Validate reports the first option outside its allowed range
func (c Render) Validate() error {
	checks := []struct {
		ok    bool
		field string
		value interface{}
	}{
		{c.Width > 0, "Width", c.Width},
		{c.Height > 0, "Height", c.Height},
		{c.MaxSamples > 0, "MaxSamples", c.MaxSamples},
		{c.AASamples > 0, "AASamples", c.AASamples},
		{c.AAFilterWidth >= 0, "AAFilterWidth", c.AAFilterWidth},
		{c.LightSamples > 0, "LightSamples", c.LightSamples},
		{c.GIDepth >= 0, "GIDepth", c.GIDepth},
		{c.GISamples > 0, "GISamples", c.GISamples},
		{c.AOSamples > 0, "AOSamples", c.AOSamples},
		{c.AODistance > 0, "AODistance", c.AODistance},
		{c.TileSize > 0, "TileSize", c.TileSize},
		{c.Workers >= 0, "Workers", c.Workers},
		{c.ExportEvery >= 0, "ExportEvery", c.ExportEvery},
	}

	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s = %v", ErrInvalid, check.field, check.value)
		}
	}
	return nil
}

// ParseColor parses an "r,g,b" triple
func ParseColor(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("%w: color %q must have three components", ErrInvalid, s)
	}

	var rgb [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("%w: color %q: %v", ErrInvalid, s, err)
		}
		rgb[i] = v
	}
	return core.NewVec3(rgb[0], rgb[1], rgb[2]), nil
}

// FormatColor is the inverse of ParseColor
func FormatColor(c core.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", c.X, c.Y, c.Z)
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// FromEnv applies RT_* environment variables on top of base
func FromEnv(base Render) (Render, error) {
	return fromLookup(base, os.LookupEnv)
}

// FromEnvFile applies the variables of a .env-format file on top of base
// without touching the process environment
func FromEnvFile(base Render, path string) (Render, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return base, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fromLookup(base, func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

type lookupFunc func(key string) (string, bool)

func fromLookup(c Render, lookup lookupFunc) (Render, error) {
	var err error
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok && err == nil {
			n, perr := strconv.Atoi(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = n
		}
	}
	setInt64 := func(key string, dst *int64) {
		if v, ok := lookup(key); ok && err == nil {
			n, perr := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = n
		}
	}
	setFloat := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && err == nil {
			f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = f
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && err == nil {
			b, perr := strconv.ParseBool(strings.TrimSpace(v))
			if perr != nil {
				err = fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
				return
			}
			*dst = b
		}
	}
	setColor := func(key string, dst *core.Vec3) {
		if v, ok := lookup(key); ok && err == nil {
			col, perr := ParseColor(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			*dst = col
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	setInt("RT_WIDTH", &c.Width)
	setInt("RT_HEIGHT", &c.Height)
	setInt("RT_MAX_SAMPLES", &c.MaxSamples)
	setInt("RT_AA_SAMPLES", &c.AASamples)
	setFloat("RT_AA_FILTER_WIDTH", &c.AAFilterWidth)
	setBool("RT_SOFT_SHADOWS", &c.SoftShadows)
	setInt("RT_LIGHT_SAMPLES", &c.LightSamples)
	setBool("RT_USE_GI", &c.UseGI)
	setInt("RT_GI_DEPTH", &c.GIDepth)
	setInt("RT_GI_SAMPLES", &c.GISamples)
	setBool("RT_USE_AO", &c.UseAO)
	setInt("RT_AO_SAMPLES", &c.AOSamples)
	setFloat("RT_AO_DISTANCE", &c.AODistance)
	setColor("RT_BACKGROUND", &c.Background)
	setColor("RT_AMBIENT_LIGHT", &c.AmbientLight)
	setBool("RT_DEBUG_LABEL", &c.DebugLabel)
	setInt("RT_TILE_SIZE", &c.TileSize)
	setInt("RT_WORKERS", &c.Workers)
	setInt64("RT_SEED", &c.Seed)
	setInt("RT_EXPORT_EVERY", &c.ExportEvery)
	setString("RT_OUTPUT_DIR", &c.OutputDir)
	setString("RT_S3_BUCKET", &c.S3Bucket)
	setString("RT_S3_REGION", &c.S3Region)
	setString("RT_S3_ENDPOINT", &c.S3Endpoint)
	setString("RT_S3_PREFIX", &c.S3Prefix)
	setString("RT_S3_ACCESS_KEY", &c.S3AccessKey)
	setString("RT_S3_SECRET_KEY", &c.S3SecretKey)

	return c, err
}
