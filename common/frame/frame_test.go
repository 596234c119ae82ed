package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hulkholden/snowglobe/common/animation"
	"github.com/hulkholden/snowglobe/common/dispatch"
	"github.com/hulkholden/snowglobe/common/kernel"
	"github.com/hulkholden/snowglobe/common/uniforms"
	"github.com/hulkholden/snowglobe/common/vmath"
)

type fakeSurface struct {
	width, height int
}

func (s *fakeSurface) Size() (int, int) { return s.width, s.height }

type fakeProvider struct {
	surface *fakeSurface
	err     error
}

func (p *fakeProvider) Surface() (Surface, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.surface, nil
}

type encodeCall struct {
	Kernel   string
	Uniforms []byte
	Plan     dispatch.Plan
}

type fakeEncoder struct {
	encoded   []encodeCall
	presented int
	err       error
}

func (e *fakeEncoder) Encode(k kernel.Kernel, u []byte, target Surface, plan dispatch.Plan) error {
	if e.err != nil {
		return e.err
	}
	e.encoded = append(e.encoded, encodeCall{Kernel: k.Name, Uniforms: u, Plan: plan})
	return nil
}

func (e *fakeEncoder) Present(target Surface) error {
	e.presented++
	return nil
}

type fixture struct {
	driver   *Driver
	surface  *fakeSurface
	provider *fakeProvider
	encoder  *fakeEncoder
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, fps int, nonUniform bool) fixture {
	t.Helper()
	planner, err := dispatch.NewPlanner(dispatch.Capabilities{PreferredExecutionWidth: 32, MaxThreadsPerGroup: 1024}, nonUniform)
	if err != nil {
		t.Fatalf("NewPlanner() = %v", err)
	}
	anim, err := animation.New(animation.Config{Duration: 1, StartAsCircle: true})
	if err != nil {
		t.Fatalf("animation.New() = %v", err)
	}
	f := fixture{
		surface: &fakeSurface{width: 1000, height: 500},
		encoder: &fakeEncoder{},
		logs:    &bytes.Buffer{},
	}
	f.provider = &fakeProvider{surface: f.surface}
	cfg := Config{
		TargetFrameRate: fps,
		Tint:            vmath.NewV3(0, 1, 0),
		Logger:          log.New(f.logs, "", 0),
		StatsEvery:      fps,
	}
	f.driver, err = New(cfg, kernel.Kernel{Name: "background"}, planner, anim, f.provider, f.encoder)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return f
}

func (f fixture) tick(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := f.driver.Tick(); err != nil {
			t.Fatalf("Tick() = %v", err)
		}
	}
}

func mixOf(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[uniforms.Struct.MustOffsetOf("shapeMix"):]))
}

func TestNewRejectsFrameRate(t *testing.T) {
	planner, _ := dispatch.NewPlanner(dispatch.Capabilities{PreferredExecutionWidth: 8, MaxThreadsPerGroup: 64}, false)
	anim, _ := animation.New(animation.DefaultConfig())
	if _, err := New(Config{}, kernel.Kernel{}, planner, anim, &fakeProvider{}, &fakeEncoder{}); !errors.Is(err, ErrInvalidFrameRate) {
		t.Errorf("New(fps 0) = %v, want ErrInvalidFrameRate", err)
	}
}

func TestNewRejectsMissingComponents(t *testing.T) {
	planner, _ := dispatch.NewPlanner(dispatch.Capabilities{PreferredExecutionWidth: 8, MaxThreadsPerGroup: 64}, false)
	anim, _ := animation.New(animation.DefaultConfig())
	cfg := Config{TargetFrameRate: DefaultFrameRate}
	tests := []struct {
		name     string
		planner  *dispatch.Planner
		anim     *animation.Controller
		surfaces SurfaceProvider
		encoder  Encoder
	}{
		{name: "planner", anim: anim, surfaces: &fakeProvider{}, encoder: &fakeEncoder{}},
		{name: "animation", planner: planner, surfaces: &fakeProvider{}, encoder: &fakeEncoder{}},
		{name: "surfaces", planner: planner, anim: anim, encoder: &fakeEncoder{}},
		{name: "encoder", planner: planner, anim: anim, surfaces: &fakeProvider{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(cfg, kernel.Kernel{}, tc.planner, tc.anim, tc.surfaces, tc.encoder); !errors.Is(err, ErrMissingComponent) {
				t.Errorf("New() = %v, want ErrMissingComponent", err)
			}
		})
	}
}

func TestTick(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 1)

	u := f.driver.Uniforms()
	if got := u.Time(); got != 0.1 {
		t.Errorf("Time() = %v, want 0.1", got)
	}
	if got := u.Aspect(); got != 2 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
	if got := u.ShapeMix(); got != 1 {
		t.Errorf("ShapeMix() = %v, want 1 before any toggle", got)
	}
	if !u.Circle() {
		t.Errorf("Circle() = false, want true")
	}

	want := []encodeCall{{
		Kernel:   "background",
		Uniforms: u.Bytes(),
		Plan: dispatch.Plan{
			Mode:        dispatch.ThreadGroupGrid,
			GridWidth:   1000,
			GridHeight:  500,
			GroupWidth:  32,
			GroupHeight: 32,
			GroupsX:     32,
			GroupsY:     16,
		},
	}}
	if diff := cmp.Diff(want, f.encoder.encoded); diff != "" {
		t.Errorf("encoded diff (-want +got):\n%s", diff)
	}
	if f.encoder.presented != 1 {
		t.Errorf("presented = %d, want 1", f.encoder.presented)
	}
}

func TestTickDirectThreads(t *testing.T) {
	f := newFixture(t, 60, true)
	f.tick(t, 1)
	plan := f.encoder.encoded[0].Plan
	if plan.Mode != dispatch.DirectThreads || plan.ThreadsX() != 1000 || plan.ThreadsY() != 500 {
		t.Errorf("plan = %+v, want DirectThreads over 1000x500", plan)
	}
}

func TestToggleAnimatesMix(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 5)

	f.driver.RequestToggle()
	// The toggle lands at the time of the last frame (0.5); each tick
	// advances 0.1 before querying.
	var got []float32
	for i := 0; i < 12; i++ {
		f.tick(t, 1)
		got = append(got, f.driver.Uniforms().ShapeMix())
	}
	want := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1, 1, 1}
	approx := cmp.Comparer(func(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 })
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("ShapeMix() per frame diff (-want +got):\n%s", diff)
	}
	if f.driver.Uniforms().Circle() {
		t.Errorf("Circle() = true after one toggle, want false")
	}
	if got := f.driver.Stats().Toggles; got != 1 {
		t.Errorf("Stats().Toggles = %d, want 1", got)
	}
	if last := f.encoder.encoded[len(f.encoder.encoded)-1]; mixOf(last.Uniforms) != 1 {
		t.Errorf("uploaded shapeMix = %v, want 1", mixOf(last.Uniforms))
	}
}

func TestSecondToggleRestartsTransition(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 2)
	f.driver.RequestToggle()
	f.tick(t, 5)
	f.driver.RequestToggle()
	f.tick(t, 1)

	u := f.driver.Uniforms()
	if !u.Circle() {
		t.Errorf("Circle() = false after two toggles, want true")
	}
	if got := u.ShapeMix(); math.Abs(float64(got)-0.1) > 1e-4 {
		t.Errorf("ShapeMix() = %v, want 0.1 after restart", got)
	}
}

func TestTogglesQueuedWithinAFrame(t *testing.T) {
	f := newFixture(t, 10, false)
	f.driver.RequestToggle()
	f.driver.RequestToggle()
	f.driver.RequestToggle()
	f.tick(t, 1)
	if f.driver.Uniforms().Circle() {
		t.Errorf("Circle() = true after three toggles, want false")
	}
	if got := f.driver.Stats().Toggles; got != 3 {
		t.Errorf("Stats().Toggles = %d, want 3", got)
	}
}

func TestResizeEvents(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 1)

	f.surface.width, f.surface.height = 300, 600
	f.tick(t, 1)
	if got := f.driver.Uniforms().Aspect(); got != 0.5 {
		t.Errorf("Aspect() = %v after surface resize, want 0.5", got)
	}
	if got := f.encoder.encoded[1].Plan; got.GroupsX != 10 || got.GroupsY != 19 {
		t.Errorf("plan groups = %dx%d, want 10x19", got.GroupsX, got.GroupsY)
	}

	if err := f.driver.Resize(0, 600); !errors.Is(err, uniforms.ErrInvalidGeometry) {
		t.Errorf("Resize(0, 600) = %v, want ErrInvalidGeometry", err)
	}
	if got := f.driver.Uniforms().Aspect(); got != 0.5 {
		t.Errorf("Aspect() = %v after rejected resize, want 0.5", got)
	}
}

func TestTickFailsFastOnZeroHeight(t *testing.T) {
	f := newFixture(t, 10, false)
	f.surface.height = 0
	err := f.driver.Tick()
	if !errors.Is(err, dispatch.ErrInvalidGeometry) {
		t.Fatalf("Tick() = %v, want ErrInvalidGeometry", err)
	}
	if len(f.encoder.encoded) != 0 || f.encoder.presented != 0 {
		t.Errorf("frame was submitted after a geometry error: %d encoded, %d presented", len(f.encoder.encoded), f.encoder.presented)
	}
}

func TestFailedTickLeavesStateUntouched(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 3)
	before := f.driver.Uniforms()

	f.driver.RequestToggle()
	f.surface.height = 0
	if err := f.driver.Tick(); !errors.Is(err, uniforms.ErrInvalidGeometry) {
		t.Fatalf("Tick() = %v, want ErrInvalidGeometry", err)
	}
	after := f.driver.Uniforms()
	if after.Time() != before.Time() || after.Aspect() != before.Aspect() || after.Circle() != before.Circle() {
		t.Errorf("Uniforms() changed by a failed tick: time %v -> %v, aspect %v -> %v, circle %v -> %v",
			before.Time(), after.Time(), before.Aspect(), after.Aspect(), before.Circle(), after.Circle())
	}
	if got := f.driver.Stats().Toggles; got != 0 {
		t.Errorf("Stats().Toggles = %d after a failed tick, want 0", got)
	}

	f.surface.height = 500
	f.tick(t, 1)
	if f.driver.Uniforms().Circle() {
		t.Errorf("Circle() = true, want the queued toggle applied on the next good tick")
	}
	if got := f.driver.Stats().Toggles; got != 1 {
		t.Errorf("Stats().Toggles = %d, want 1", got)
	}
}

func TestTickPropagatesCollaboratorErrors(t *testing.T) {
	f := newFixture(t, 10, false)
	surfaceLost := errors.New("surface lost")
	f.provider.err = surfaceLost
	if err := f.driver.Tick(); !errors.Is(err, surfaceLost) {
		t.Errorf("Tick() = %v, want %v", err, surfaceLost)
	}

	f.provider.err = nil
	submitFailed := errors.New("submit failed")
	f.encoder.err = submitFailed
	if err := f.driver.Tick(); !errors.Is(err, submitFailed) {
		t.Errorf("Tick() = %v, want %v", err, submitFailed)
	}
	if f.encoder.presented != 0 {
		t.Errorf("presented = %d after encode failure, want 0", f.encoder.presented)
	}
}

func TestStatsLogging(t *testing.T) {
	f := newFixture(t, 10, false)
	f.tick(t, 20)
	lines := strings.Split(strings.TrimSpace(f.logs.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), f.logs.String())
	}
	if !strings.HasPrefix(lines[1], "frame 20:") {
		t.Errorf("log line = %q, want prefix %q", lines[1], "frame 20:")
	}
	if got := f.driver.Stats().Frames; got != 20 {
		t.Errorf("Stats().Frames = %d, want 20", got)
	}
}

func TestExtent(t *testing.T) {
	if err := ExtentStruct.CheckLayout(); err != nil {
		t.Fatalf("CheckLayout() = %v", err)
	}
	e := NewExtent(640, 480)
	b := e.Bytes()
	if len(b) != 16 {
		t.Fatalf("len(Bytes()) = %d, want 16", len(b))
	}
	if w, h := binary.LittleEndian.Uint32(b[0:]), binary.LittleEndian.Uint32(b[4:]); w != 640 || h != 480 {
		t.Errorf("Bytes() encodes %dx%d, want 640x480", w, h)
	}
	if e.Pixels() != 640*480 {
		t.Errorf("Pixels() = %d, want %d", e.Pixels(), 640*480)
	}
}
