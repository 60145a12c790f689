package converter

import (
	"context"
	"errors"
	"testing"
)

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SourceDimensions
		wantErr bool
	}{
		{"plain csv", "1920,1080", SourceDimensions{1920, 1080}, false},
		{"trailing newline", "1280,720\n", SourceDimensions{1280, 720}, false},
		{"spaces around fields", " 640 , 480 ", SourceDimensions{640, 480}, false},
		{"empty output", "", SourceDimensions{}, true},
		{"single field", "1920", SourceDimensions{}, true},
		{"non-numeric width", "abc,720", SourceDimensions{}, true},
		{"non-numeric height", "1280,xyz", SourceDimensions{}, true},
		{"zero width", "0,720", SourceDimensions{}, true},
		{"negative height", "1280,-1", SourceDimensions{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDimensions(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, expected %+v", got, tt.want)
			}
		})
	}
}

func TestProber_ProbeDimensions(t *testing.T) {
	t.Run("valid output is parsed", func(t *testing.T) {
		p := NewProber("")
		p.probeOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("1920,1080\n"), nil
		}

		got := p.ProbeDimensions(context.Background(), "/in/video.mp4")
		if got != (SourceDimensions{1920, 1080}) {
			t.Errorf("got %+v, expected {1920 1080}", got)
		}
	})

	t.Run("process error falls back to defaults", func(t *testing.T) {
		p := NewProber("")
		p.probeOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return nil, errors.New("exit status 1")
		}

		got := p.ProbeDimensions(context.Background(), "/in/video.mp4")
		if got != DefaultDimensions {
			t.Errorf("got %+v, expected defaults %+v", got, DefaultDimensions)
		}
	})

	t.Run("garbage output falls back to defaults", func(t *testing.T) {
		p := NewProber("")
		p.probeOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("not,numbers"), nil
		}

		got := p.ProbeDimensions(context.Background(), "/in/video.mp4")
		if got != DefaultDimensions {
			t.Errorf("got %+v, expected defaults %+v", got, DefaultDimensions)
		}
	})

	t.Run("empty output falls back to defaults", func(t *testing.T) {
		p := NewProber("")
		p.probeOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte(""), nil
		}

		got := p.ProbeDimensions(context.Background(), "/in/video.mp4")
		if got != DefaultDimensions {
			t.Errorf("got %+v, expected defaults %+v", got, DefaultDimensions)
		}
	})
}

func TestProber_ProbeArgs(t *testing.T) {
	p := NewProber("/usr/local/bin/ffprobe")

	var gotName string
	var gotArgs []string
	p.probeOutput = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return []byte("1280,720"), nil
	}

	p.ProbeDimensions(context.Background(), "/in/clip.mov")

	if gotName != "/usr/local/bin/ffprobe" {
		t.Errorf("binary: got %q, expected configured path", gotName)
	}

	expectedArgs := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		"/in/clip.mov",
	}

	if len(gotArgs) != len(expectedArgs) {
		t.Fatalf("arg count mismatch: got %d, expected %d", len(gotArgs), len(expectedArgs))
	}
	for i, expected := range expectedArgs {
		if gotArgs[i] != expected {
			t.Errorf("arg[%d]: got %q, expected %q", i, gotArgs[i], expected)
		}
	}
}
