package dispatch

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var caps32x32 = Capabilities{PreferredExecutionWidth: 32, MaxThreadsPerGroup: 1024}

func TestNewPlanner(t *testing.T) {
	tests := []struct {
		name       string
		caps       Capabilities
		nonUniform bool
		wantMode   Mode
		wantW      int
		wantH      int
		wantErr    error
	}{
		{name: "grid", caps: caps32x32, wantMode: ThreadGroupGrid, wantW: 32, wantH: 32},
		{name: "direct", caps: caps32x32, nonUniform: true, wantMode: DirectThreads, wantW: 32, wantH: 32},
		{name: "truncating height", caps: Capabilities{PreferredExecutionWidth: 24, MaxThreadsPerGroup: 256}, wantMode: ThreadGroupGrid, wantW: 24, wantH: 10},
		{name: "single row", caps: Capabilities{PreferredExecutionWidth: 64, MaxThreadsPerGroup: 64}, wantMode: ThreadGroupGrid, wantW: 64, wantH: 1},
		{name: "zero width", caps: Capabilities{PreferredExecutionWidth: 0, MaxThreadsPerGroup: 64}, wantErr: ErrCapabilityMismatch},
		{name: "negative width", caps: Capabilities{PreferredExecutionWidth: -8, MaxThreadsPerGroup: 64}, wantErr: ErrCapabilityMismatch},
		{name: "max below width", caps: Capabilities{PreferredExecutionWidth: 32, MaxThreadsPerGroup: 16}, wantErr: ErrCapabilityMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlanner(tc.caps, tc.nonUniform)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewPlanner(%+v) = %v, want %v", tc.caps, err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if p.Mode() != tc.wantMode {
				t.Errorf("Mode() = %v, want %v", p.Mode(), tc.wantMode)
			}
			if w, h := p.GroupSize(); w != tc.wantW || h != tc.wantH {
				t.Errorf("GroupSize() = (%d, %d), want (%d, %d)", w, h, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestPlanThreadGroupGrid(t *testing.T) {
	got, err := Compute(1000, 700, caps32x32, false)
	if err != nil {
		t.Fatalf("Compute() = %v, want nil error", err)
	}
	want := Plan{
		Mode:        ThreadGroupGrid,
		GridWidth:   1000,
		GridHeight:  700,
		GroupWidth:  32,
		GroupHeight: 32,
		GroupsX:     32,
		GroupsY:     22,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compute() diff (-want +got):\n%s", diff)
	}
	if got.ThreadsX() != 1024 || got.ThreadsY() != 704 {
		t.Errorf("threads = %dx%d, want 1024x704", got.ThreadsX(), got.ThreadsY())
	}
}

func TestPlanDirectThreads(t *testing.T) {
	got, err := Compute(1000, 700, caps32x32, true)
	if err != nil {
		t.Fatalf("Compute() = %v, want nil error", err)
	}
	if got.Mode != DirectThreads {
		t.Errorf("Mode = %v, want DirectThreads", got.Mode)
	}
	if got.ThreadsX() != 1000 || got.ThreadsY() != 700 {
		t.Errorf("threads = %dx%d, want exactly 1000x700", got.ThreadsX(), got.ThreadsY())
	}
}

func TestPlanInvalidGeometry(t *testing.T) {
	p, err := NewPlanner(caps32x32, false)
	if err != nil {
		t.Fatalf("NewPlanner() = %v", err)
	}
	for _, ext := range [][2]int{{0, 10}, {10, 0}, {-1, 10}, {0, 0}} {
		if _, err := p.Plan(ext[0], ext[1]); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("Plan(%d, %d) = %v, want ErrInvalidGeometry", ext[0], ext[1], err)
		}
	}
}

// TestPlanCoversSurface checks every pixel of a range of awkward extents is covered
// in both modes.
func TestPlanCoversSurface(t *testing.T) {
	capsList := []Capabilities{
		caps32x32,
		{PreferredExecutionWidth: 8, MaxThreadsPerGroup: 64},
		{PreferredExecutionWidth: 24, MaxThreadsPerGroup: 256},
		{PreferredExecutionWidth: 1, MaxThreadsPerGroup: 1},
	}
	extents := []int{1, 2, 7, 31, 32, 33, 63, 100}
	for _, caps := range capsList {
		for _, nonUniform := range []bool{false, true} {
			for _, w := range extents {
				for _, h := range extents {
					plan, err := Compute(w, h, caps, nonUniform)
					if err != nil {
						t.Fatalf("Compute(%d, %d, %+v, %v) = %v", w, h, caps, nonUniform, err)
					}
					if !plan.Covers(w-1, h-1) || !plan.Covers(0, 0) {
						t.Errorf("Compute(%d, %d, %+v, %v) does not cover the surface corners: %+v", w, h, caps, nonUniform, plan)
					}
					if plan.ThreadsX() < w || plan.ThreadsY() < h {
						t.Errorf("Compute(%d, %d, %+v, %v) under-covers: %dx%d threads", w, h, caps, nonUniform, plan.ThreadsX(), plan.ThreadsY())
					}
					if plan.Mode == ThreadGroupGrid {
						if plan.ThreadsX()-w >= plan.GroupWidth || plan.ThreadsY()-h >= plan.GroupHeight {
							t.Errorf("Compute(%d, %d, %+v) launches a redundant group: %+v", w, h, caps, plan)
						}
					}
				}
			}
		}
	}
}

func TestModeString(t *testing.T) {
	for m, want := range map[Mode]string{
		ThreadGroupGrid: "ThreadGroupGrid",
		DirectThreads:   "DirectThreads",
		Mode(7):         "Mode(7)",
	} {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(m), got, want)
		}
	}
}
