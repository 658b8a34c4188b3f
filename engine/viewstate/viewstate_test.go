package viewstate

import (
	"errors"
	"image/color"
	m "math"
	"reflect"
	"testing"

	"github.com/spaghettifunk/extrudo/engine/core"
	"github.com/spaghettifunk/extrudo/engine/math"
	"github.com/spaghettifunk/extrudo/engine/renderer/components"
	"github.com/spaghettifunk/extrudo/engine/scene"
	"github.com/spaghettifunk/extrudo/engine/storage"
)

const epsilon = 1e-6

var testViewport = Viewport{Width: 800, Height: 600, FitFraction: 0.8}

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if m.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec(t *testing.T, name string, got, want math.Vec3) {
	t.Helper()
	if !got.Compare(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func box(w, h, d float64) math.Extents3D {
	return math.Extents3D{Min: math.NewVec3(0, 0, 0), Max: math.NewVec3(w, h, d)}
}

func readyEngine(t *testing.T, bounds math.Extents3D) *scene.TransformEngine {
	t.Helper()
	te := scene.NewTransformEngine(nil)
	if err := te.AttachGeometry(bounds); err != nil {
		t.Fatal(err)
	}
	return te
}

func newStore(t *testing.T) (*Store, *storage.MemoryStore) {
	t.Helper()
	kv := storage.NewMemoryStore()
	s, err := NewStore(kv, "")
	if err != nil {
		t.Fatal(err)
	}
	return s, kv
}

func sampleLighting() Lighting {
	on, off := true, false
	return Lighting{
		"ambient": {Visible: &on, Intensity: ptr(0.4), Color: "#ffffff"},
		"spot": {
			Visible:   &off,
			Intensity: ptr(1.5),
			Color:     "orange",
			Position:  &Vec3Record{X: 1, Y: 2, Z: 3},
			Extra:     map[string]any{"angle": 0.5, "penumbra": 0.2, "target": "model"},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	te := readyEngine(t, box(100, 100, 10))
	_ = te.SetTransform(math.NewVec3(3, -4, 0), 1.25, 2)
	_ = te.SetAnchor(scene.AnchorPoint{X: 0.3, Y: 0.7})
	camera := components.NewCamera(800, 600)
	camera.SetZoom(1.5)

	vs, err := Capture(te, camera, DefaultRendering(), sampleLighting())
	if err != nil {
		t.Fatal(err)
	}
	vs.Session = core.NewIdentifier()

	data, err := Encode(vs)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(vs, back) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, vs)
	}
}

func TestCaptureBeforeGeometryFails(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Save(scene.NewTransformEngine(nil), nil, DefaultRendering(), nil)
	if !errors.Is(err, core.ErrNotReady) {
		t.Errorf("Save before load = %v, want ErrNotReady", err)
	}
}

func TestSaveRestoreIsIdempotent(t *testing.T) {
	bounds := box(120, 80, 15)
	anchors := []scene.AnchorPoint{scene.AnchorCenter, scene.AnchorBottomLeft, scene.AnchorTopRight, {X: 0.9, Y: 0.1}}

	for _, a := range anchors {
		te := readyEngine(t, bounds)
		_ = te.SetTransform(math.NewVec3(-30, 12, 0), -2.5, 0.75)
		_ = te.SetAnchor(a)
		want := te.Transform()
		wantAnchor := te.WorldAnchor()

		s, _ := newStore(t)
		vs, err := s.Save(te, nil, DefaultRendering(), nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Persist(vs); err != nil {
			t.Fatal(err)
		}

		restored := scene.NewTransformEngine(nil)
		if err := Restore(s.Load(), bounds, restored, nil, testViewport); err != nil {
			t.Fatal(err)
		}
		if !restored.Transform().Equal(want, epsilon) {
			t.Errorf("anchor %+v: transform %+v, want %+v", a, restored.Transform(), want)
		}
		assertVec(t, "anchor world", restored.WorldAnchor(), wantAnchor)
		if restored.Anchor() != a {
			t.Errorf("anchor = %+v, want %+v", restored.Anchor(), a)
		}
	}
}

func TestScenarioD_CorruptRecordFallsBackToDefaults(t *testing.T) {
	s, kv := newStore(t)
	_ = kv.Set(s.Key(), "{not json")

	vs := s.Load()
	if vs != nil {
		t.Fatalf("Load(corrupt) = %+v, want nil", vs)
	}

	te := scene.NewTransformEngine(nil)
	bounds := box(100, 100, 10)
	if err := Restore(vs, bounds, te, nil, testViewport); err != nil {
		t.Fatalf("Restore(nil) = %v", err)
	}
	assertVec(t, "position", te.Position(), math.NewVec3Zero())
	assertNear(t, "rotation", te.RotationZ(), 0)
	assertNear(t, "scale", te.Scale(), 0.8*6)
	if te.Anchor() != scene.DefaultAnchor {
		t.Errorf("anchor = %+v", te.Anchor())
	}
}

func TestDecodeReportsCorruptState(t *testing.T) {
	for _, data := range []string{"", "{", `{"transform": 3}`, `{"lighting": {"a": []}}`} {
		_, err := Decode([]byte(data))
		if core.KindOf(err) != core.KindCorruptState {
			t.Errorf("Decode(%q) = %v, want CorruptState", data, err)
		}
	}
}

func TestLoadMissingRecord(t *testing.T) {
	s, _ := newStore(t)
	if vs := s.Load(); vs != nil {
		t.Errorf("Load(missing) = %+v, want nil", vs)
	}
}

func TestPartialRecordDefaultsEachField(t *testing.T) {
	vs, err := Decode([]byte(`{"transform":{"rotation":{"x":0,"y":0,"z":1.5}},"rendering":{"modelColor":"red"}}`))
	if err != nil {
		t.Fatal(err)
	}
	te := scene.NewTransformEngine(nil)
	if err := Restore(vs, box(100, 100, 10), te, nil, testViewport); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "rotation", te.RotationZ(), 1.5)
	assertVec(t, "position", te.Position(), math.NewVec3Zero())
	assertNear(t, "scale", te.Scale(), 4.8)
	if te.Anchor() != scene.DefaultAnchor {
		t.Errorf("anchor = %+v", te.Anchor())
	}

	r := vs.RenderingOrDefault()
	want := DefaultRendering()
	want.ModelColor = "red"
	if r != want {
		t.Errorf("rendering = %+v, want %+v", r, want)
	}
	if len(vs.LightingOrDefault()) != len(DefaultLighting()) {
		t.Error("missing lighting did not fall back to defaults")
	}
}

func TestRestoreAfterBoundsChangeKeepsAnchorWorld(t *testing.T) {
	te := readyEngine(t, box(100, 100, 10))
	_ = te.SetAnchor(scene.AnchorBottomLeft)
	_ = te.SetTransform(math.NewVec3(40, 10, 0), 0.6, 1.5)
	saved := te.WorldAnchor()

	vs, err := Capture(te, nil, DefaultRendering(), nil)
	if err != nil {
		t.Fatal(err)
	}

	// Deeper extrusion and a wider outline.
	restored := scene.NewTransformEngine(nil)
	if err := Restore(vs, box(160, 100, 40), restored, nil, testViewport); err != nil {
		t.Fatal(err)
	}
	assertVec(t, "anchor world", restored.WorldAnchor(), saved)
	assertNear(t, "rotation", restored.RotationZ(), 0.6)
	assertNear(t, "scale", restored.Scale(), 1.5)
}

func TestRestoreDerivesHandles(t *testing.T) {
	te := readyEngine(t, box(100, 100, 10))
	_ = te.SetAnchor(scene.AnchorTopRight)
	vs, _ := Capture(te, nil, DefaultRendering(), nil)
	vs.Handles.MovementHandle.Position = &Vec3Record{X: 999, Y: 999}
	vs.Handles.RotationHandle.Position = &Vec3Record{X: -999}

	restored := scene.NewTransformEngine(nil)
	_ = Restore(vs, box(100, 100, 10), restored, nil, testViewport)
	h := restored.Handles()
	assertVec(t, "movement handle", h.Movement.Position, restored.WorldAnchor())
	if h.Rotation.Position.X == -999 {
		t.Error("rotation handle read back from the record")
	}
}

func TestRestoreAppliesCamera(t *testing.T) {
	te := readyEngine(t, box(100, 100, 10))
	camera := components.NewCamera(800, 600)
	camera.SetPosition(math.NewVec3(10, 20, 300))
	camera.SetRotation(components.Euler{Z: 0.25})
	camera.SetZoom(2)
	vs, _ := Capture(te, camera, DefaultRendering(), nil)

	target := components.NewCamera(1024, 768)
	_ = Restore(vs, box(100, 100, 10), scene.NewTransformEngine(nil), target, testViewport)
	assertVec(t, "camera position", target.Position, math.NewVec3(10, 20, 300))
	assertNear(t, "camera zoom", target.Zoom, 2)
	assertNear(t, "camera rotation", target.Rotation.Z, 0.25)
	assertNear(t, "camera left", target.Left, -400)
	assertNear(t, "camera top", target.Top, 300)
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.RGBA{
		"#ff8000":    {R: 0xff, G: 0x80, A: 0xff},
		"#0f0":       {G: 0xff, A: 0xff},
		" SteelBlue": {R: 0x46, G: 0x82, B: 0xb4, A: 0xff},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12345", "#gggggg", "notacolour"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) succeeded", bad)
		}
	}
}

func TestRenderingNormalized(t *testing.T) {
	r := RenderingParams{
		ModelColor:      "??",
		BackgroundColor: "black",
		ExtrusionDepth:  -3,
		CurveSegments:   500,
		Metalness:       1.7,
		Roughness:       m.NaN(),
	}.Normalized()

	def := DefaultRendering()
	if r.ModelColor != def.ModelColor || r.BackgroundColor != "black" {
		t.Errorf("colours = %q, %q", r.ModelColor, r.BackgroundColor)
	}
	assertNear(t, "depth", r.ExtrusionDepth, def.ExtrusionDepth)
	if r.CurveSegments != MAX_CURVE_SEGMENTS {
		t.Errorf("curve segments = %d", r.CurveSegments)
	}
	assertNear(t, "metalness", r.Metalness, 1)
	assertNear(t, "roughness", r.Roughness, def.Roughness)
	if r.BackgroundRGBA() != (color.RGBA{A: 0xff}) {
		t.Errorf("background = %v", r.BackgroundRGBA())
	}
}

func TestLightingCloneIsDeep(t *testing.T) {
	l := sampleLighting()
	c := l.Clone()
	*c["spot"].Intensity = 9
	c["spot"].Extra["angle"] = 2.0
	if *l["spot"].Intensity != 1.5 || l["spot"].Extra["angle"] != 0.5 {
		t.Error("clone shares state with the original")
	}
	if names := l.Names(); !reflect.DeepEqual(names, []string{"ambient", "spot"}) {
		t.Errorf("Names = %v", names)
	}
}

func TestSessionIsWrittenAndValidated(t *testing.T) {
	s, kv := newStore(t)
	te := readyEngine(t, box(10, 10, 1))
	vs, _ := s.Save(te, nil, DefaultRendering(), nil)
	_ = s.Persist(vs)
	if got := s.Load(); got == nil || got.Session != s.Session() {
		t.Errorf("loaded session = %+v, want %s", got, s.Session())
	}

	_ = kv.Set(s.Key(), `{"session":"not-a-uuid"}`)
	if got := s.Load(); got == nil || got.Session != "" {
		t.Errorf("malformed session kept: %+v", got)
	}
}
