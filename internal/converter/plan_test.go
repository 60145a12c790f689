package converter

import "testing"

func TestPlan_ProportionalFit(t *testing.T) {
	tests := []struct {
		name    string
		srcW    int
		srcH    int
		maxEdge int
		wantW   int
		wantH   int
	}{
		{"landscape 2:1", 1000, 500, 512, 512, 256},
		{"portrait 1:2", 500, 1000, 512, 256, 512},
		{"square", 800, 800, 512, 512, 512},
		{"already at bound", 512, 256, 512, 512, 256},
		{"upscale small source", 100, 50, 512, 512, 256},
		{"hd default", 1280, 720, 512, 512, 288},
		{"truncating ratio", 1000, 335, 512, 512, 171},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Plan(tt.srcW, tt.srcH, tt.maxEdge, false)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Plan(%d, %d, %d) = (%d, %d), expected (%d, %d)",
					tt.srcW, tt.srcH, tt.maxEdge, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPlan_LongerEdgeMapsToMaxEdge(t *testing.T) {
	sources := []struct{ w, h int }{
		{1920, 1080}, {640, 480}, {30, 1000}, {4096, 4096}, {513, 511},
	}

	for _, src := range sources {
		w, h := Plan(src.w, src.h, 512, false)
		longer := w
		if h > longer {
			longer = h
		}
		if longer != 512 {
			t.Errorf("Plan(%d, %d, 512): longer edge is %d, expected 512", src.w, src.h, longer)
		}
	}
}

func TestPlan_FixedSquare(t *testing.T) {
	tests := []struct {
		name string
		srcW int
		srcH int
	}{
		{"landscape", 1920, 1080},
		{"portrait", 400, 900},
		{"tiny", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Plan(tt.srcW, tt.srcH, 100, true)
			if w != 100 || h != 100 {
				t.Errorf("got (%d, %d), expected (100, 100)", w, h)
			}
		})
	}
}

func TestPlanVideo_EvenDimensions(t *testing.T) {
	tests := []struct {
		name  string
		srcW  int
		srcH  int
		wantW int
		wantH int
	}{
		{"both even after fit", 1280, 720, 512, 288},
		{"odd height rounds up", 1000, 335, 512, 172},
		{"odd width rounds up", 335, 1000, 172, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := PlanVideo(tt.srcW, tt.srcH, 512, false)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("PlanVideo(%d, %d, 512) = (%d, %d), expected (%d, %d)",
					tt.srcW, tt.srcH, w, h, tt.wantW, tt.wantH)
			}
			if w%2 != 0 || h%2 != 0 {
				t.Errorf("dimensions (%d, %d) are not both even", w, h)
			}
		})
	}
}

func TestPlanVideo_FixedSquareStaysEven(t *testing.T) {
	w, h := PlanVideo(1917, 1080, 100, true)
	if w != 100 || h != 100 {
		t.Errorf("got (%d, %d), expected (100, 100)", w, h)
	}
}

func TestConstraintsFor(t *testing.T) {
	t.Run("sticker role gets regular constraints", func(t *testing.T) {
		c := ConstraintsFor(RoleSticker)
		if c.MaxEdge != 512 || c.FixedSquare {
			t.Errorf("unexpected constraints: %+v", c)
		}
		if c.MaxOutputBytes != 256*1024 {
			t.Errorf("MaxOutputBytes: got %d, expected %d", c.MaxOutputBytes, 256*1024)
		}
		if c.InitialBitrateKbps != 300 {
			t.Errorf("InitialBitrateKbps: got %d, expected 300", c.InitialBitrateKbps)
		}
	})

	t.Run("icon role gets fixed square constraints", func(t *testing.T) {
		c := ConstraintsFor(RoleIcon)
		if c.MaxEdge != 100 || !c.FixedSquare {
			t.Errorf("unexpected constraints: %+v", c)
		}
		if c.MaxOutputBytes != 32*1024 {
			t.Errorf("MaxOutputBytes: got %d, expected %d", c.MaxOutputBytes, 32*1024)
		}
		if c.InitialBitrateKbps != 150 {
			t.Errorf("InitialBitrateKbps: got %d, expected 150", c.InitialBitrateKbps)
		}
	})
}
