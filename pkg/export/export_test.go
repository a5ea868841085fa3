package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/disintegration/imaging"

	"github.com/df07/go-tile-raytracer/pkg/config"
	"github.com/df07/go-tile-raytracer/pkg/display"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 200, 255})
		}
	}
	return img
}

func TestFileExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	fe := NewFileExporter(dir)

	if err := fe.Export(context.Background(), testImage(8, 6), "frame.png"); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	loaded, err := imaging.Open(filepath.Join(dir, "frame.png"))
	if err != nil {
		t.Fatalf("Failed to read back image: %v", err)
	}
	if loaded.Bounds().Dx() != 8 || loaded.Bounds().Dy() != 6 {
		t.Errorf("Expected 8x6, got %v", loaded.Bounds())
	}
	r, g, b, _ := loaded.At(3, 2).RGBA()
	if r>>8 != 30 || g>>8 != 20 || b>>8 != 200 {
		t.Errorf("Pixel round trip mismatch: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestFileExporter_Errors(t *testing.T) {
	fe := NewFileExporter(t.TempDir())

	if err := fe.Export(context.Background(), nil, "x.png"); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fe.Export(ctx, testImage(1, 1), "x.png"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}

	if err := fe.Export(context.Background(), testImage(1, 1), "x.unknown"); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name          string
		w, h          int
		maxSize       uint
		expectW, expH int
	}{
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 100, 200, 150, 75, 150},
		{"already small", 40, 30, 64, 40, 30},
		{"zero disables", 40, 30, 0, 40, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumb := Thumbnail(testImage(tt.w, tt.h), tt.maxSize)
			if thumb.Bounds().Dx() != tt.expectW || thumb.Bounds().Dy() != tt.expH {
				t.Errorf("Expected %dx%d, got %v", tt.expectW, tt.expH, thumb.Bounds())
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, testImage(2, 2)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("Expected PNG signature")
	}
	if err := EncodePNG(&buf, nil); !errors.Is(err, ErrNoImage) {
		t.Errorf("Expected ErrNoImage, got %v", err)
	}
}

// fakeS3 records uploads instead of talking to a bucket
type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	inputs  []*s3.PutObjectInput
	bodies  [][]byte
	failErr error
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		return nil, f.failErr
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("upload without deadline")
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, input)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Exporter(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		file        string
		expectKey   string
		contentType string
	}{
		{"png with prefix", "renders/cornell", "final.png", "renders/cornell/final.png", "image/png"},
		{"jpeg without prefix", "", "preview.jpg", "preview.jpg", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{}
			se := NewS3ExporterWithClient(client, "bucket", tt.prefix, nil)

			if err := se.Export(context.Background(), testImage(4, 4), tt.file); err != nil {
				t.Fatal(err)
			}
			if len(client.inputs) != 1 {
				t.Fatalf("Expected one upload, got %d", len(client.inputs))
			}

			in := client.inputs[0]
			if aws.StringValue(in.Bucket) != "bucket" {
				t.Errorf("Bucket = %q", aws.StringValue(in.Bucket))
			}
			if aws.StringValue(in.Key) != tt.expectKey {
				t.Errorf("Key = %q, want %q", aws.StringValue(in.Key), tt.expectKey)
			}
			if aws.StringValue(in.ContentType) != tt.contentType {
				t.Errorf("ContentType = %q, want %q", aws.StringValue(in.ContentType), tt.contentType)
			}
			if aws.Int64Value(in.ContentLength) != int64(len(client.bodies[0])) {
				t.Errorf("ContentLength %d does not match body %d", aws.Int64Value(in.ContentLength), len(client.bodies[0]))
			}
		})
	}
}

func TestS3Exporter_UploadError(t *testing.T) {
	failure := errors.New("access denied")
	se := NewS3ExporterWithClient(&fakeS3{failErr: failure}, "bucket", "", nil)

	err := se.Export(context.Background(), testImage(1, 1), "x.png")
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}

func TestNewS3Exporter_RequiresBucket(t *testing.T) {
	if _, err := NewS3Exporter(config.Default(), nil); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Expected config.ErrInvalid, got %v", err)
	}

	cfg := config.Default()
	cfg.S3Bucket = "renders"
	cfg.S3Region = "us-east-1"
	cfg.S3Endpoint = "http://localhost:9000"
	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	se, err := NewS3Exporter(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if se.Key("a.png") != "a.png" {
		t.Errorf("Unexpected key %q", se.Key("a.png"))
	}
}

// memoryExporter keeps exported names
type memoryExporter struct {
	names []string
	err   error
}

func (m *memoryExporter) Export(ctx context.Context, img image.Image, name string) error {
	m.names = append(m.names, name)
	return m.err
}

func TestPeriodicExporter(t *testing.T) {
	tests := []struct {
		name     string
		every    int
		passes   int
		expected []string
	}{
		{"every third pass plus final", 3, 7, []string{"cornell_pass0003.png", "cornell_pass0006.png", "cornell.png"}},
		{"final only", 0, 4, []string{"cornell.png"}},
		{"final coincides with period", 2, 4, []string{"cornell_pass0002.png", "cornell.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := &memoryExporter{}
			pe := NewPeriodicExporter(context.Background(), tt.every, "cornell", mem)

			for pass := 1; pass <= tt.passes; pass++ {
				if err := pe.Present(display.Frame{Image: testImage(1, 1), Pass: pass, MaxPasses: tt.passes}); err != nil {
					t.Fatal(err)
				}
			}

			if len(mem.names) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, mem.names)
			}
			for i := range tt.expected {
				if mem.names[i] != tt.expected[i] {
					t.Errorf("Export %d: expected %s, got %s", i, tt.expected[i], mem.names[i])
				}
			}
		})
	}
}

func TestPeriodicExporter_JoinsErrors(t *testing.T) {
	failure := errors.New("disk full")
	ok := &memoryExporter{}
	pe := NewPeriodicExporter(context.Background(), 1, "", &memoryExporter{err: failure}, ok)

	err := pe.Present(display.Frame{Image: testImage(1, 1), Pass: 1, MaxPasses: 1})
	if !errors.Is(err, failure) {
		t.Errorf("Expected joined failure, got %v", err)
	}
	if len(ok.names) != 1 || ok.names[0] != "raytracing.png" {
		t.Errorf("Second exporter should still run with default name, got %v", ok.names)
	}
}

func TestFileExporter_WritesIntoPeriodic(t *testing.T) {
	dir := t.TempDir()
	pe := NewPeriodicExporter(context.Background(), 1, "scene", NewFileExporter(dir))

	for pass := 1; pass <= 2; pass++ {
		if err := pe.Present(display.Frame{Image: testImage(2, 2), Pass: pass, MaxPasses: 2}); err != nil {
			t.Fatal(err)
		}
	}

	for _, name := range []string{"scene_pass0001.png", "scene.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
}

func TestPeriodicExporter_SaveFinal(t *testing.T) {
	dir := t.TempDir()
	mem := &memoryExporter{}
	pe := NewPeriodicExporter(context.Background(), 0, "render", NewFileExporter(dir), mem)

	// An interrupted render: no pass reached the end, nothing was exported yet
	if err := pe.Present(display.Frame{Image: testImage(2, 2), Pass: 3, MaxPasses: 10}); err != nil {
		t.Fatal(err)
	}
	if len(mem.names) != 0 {
		t.Fatalf("Expected no export before the final pass, got %v", mem.names)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pe.SaveFinal(context.WithoutCancel(cancelled), testImage(2, 2)); err != nil {
		t.Fatalf("SaveFinal failed: %v", err)
	}
	if len(mem.names) != 1 || mem.names[0] != "render.png" {
		t.Errorf("Expected render.png, got %v", mem.names)
	}
	if _, err := os.Stat(filepath.Join(dir, "render.png")); err != nil {
		t.Errorf("Expected render.png on disk: %v", err)
	}
}
