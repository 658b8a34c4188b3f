package loaders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/extrudo/engine/math"
)

const badge = `
name = "badge"

[[path]]
fill = "#d04040"
stroke = "none"
points = [[0.0, 0.0], [100.0, 0.0], [100.0, 60.0], [0.0, 60.0]]

[[path]]
fill = "white"
points = [[10.0, 10.0], [20.0, 10.0], [20.0, 70.0]]

[[path]]
fill = "lonely"
points = [[5.0, 5.0]]
`

func writeOutline(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "outline.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOutlineLoaderParsesPaths(t *testing.T) {
	ol := &OutlineLoader{}
	outline, err := ol.Load(context.Background(), "file://"+writeOutline(t, badge))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if outline.Name != "badge" {
		t.Errorf("name = %q", outline.Name)
	}
	if len(outline.Paths) != 2 {
		t.Fatalf("paths = %d, want 2 (single-point path skipped)", len(outline.Paths))
	}
	if outline.Paths[0].Fill != "#d04040" || outline.Paths[1].Stroke != "" {
		t.Errorf("styles not carried: %+v", outline.Paths)
	}

	e := outline.Extents(8)
	want := math.Extents3D{Min: math.NewVec3(0, 0, 0), Max: math.NewVec3(100, 70, 8)}
	if !e.Compare(want, 1e-12) {
		t.Errorf("extents = %+v, want %+v", e, want)
	}
}

func TestOutlineLoaderRejectsBadDocuments(t *testing.T) {
	ol := &OutlineLoader{}
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", "name = \"x\"\ncolour = 3\n"},
		{"bad point", "[[path]]\npoints = [[1.0, 2.0, 3.0], [1.0, 1.0]]\n"},
		{"not toml", "{{{"},
	}
	for _, tt := range tests {
		if _, err := ol.Load(context.Background(), writeOutline(t, tt.body)); err == nil {
			t.Errorf("%s: Load() succeeded", tt.name)
		}
	}

	_, err := ol.Load(context.Background(), writeOutline(t, "name = \"empty\"\n"))
	if !errors.Is(err, ErrEmptyOutline) {
		t.Errorf("empty outline err = %v, want ErrEmptyOutline", err)
	}
}

func TestOutlineLoaderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ol := &OutlineLoader{}
	if _, err := ol.Load(ctx, writeOutline(t, badge)); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
