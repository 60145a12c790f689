package converter

import "time"

// SizeConstraints bundles the per-role limits a converted asset must meet.
// The two fixed instances below are the Telegram sticker requirements; they
// are not user-configurable.
type SizeConstraints struct {
	// MaxEdge is the pixel bound for the longer edge. When FixedSquare is
	// set it is used as both width and height instead.
	MaxEdge     int
	FixedSquare bool

	// MaxDuration truncates video input. Ignored for images.
	MaxDuration time.Duration

	// MaxOutputBytes is the hard ceiling the bitrate search drives toward.
	MaxOutputBytes int64

	// FrameRate is the fixed output frame rate for video.
	FrameRate int

	// InitialBitrateKbps is the starting point of the bitrate search.
	// Icons start lower because their byte budget is 8x tighter.
	InitialBitrateKbps int
}

var (
	// Regular bounds a sticker to 512px on its longer edge, 3 seconds and
	// 256KB of WebM.
	Regular = SizeConstraints{
		MaxEdge:            512,
		MaxDuration:        3 * time.Second,
		MaxOutputBytes:     256 * 1024,
		FrameRate:          30,
		InitialBitrateKbps: 300,
	}

	// Icon is a fixed 100x100 square with a 32KB budget.
	Icon = SizeConstraints{
		MaxEdge:            100,
		FixedSquare:        true,
		MaxDuration:        3 * time.Second,
		MaxOutputBytes:     32 * 1024,
		FrameRate:          30,
		InitialBitrateKbps: 150,
	}
)

// ConstraintsFor returns the fixed constraint set for a role.
func ConstraintsFor(role Role) SizeConstraints {
	if role == RoleIcon {
		return Icon
	}
	return Regular
}
