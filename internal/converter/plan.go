package converter

// Plan computes the target dimensions for an asset.
//
// With fixedSquare set it returns (maxEdge, maxEdge) regardless of source
// aspect ratio. Otherwise it scales proportionally so the longer source edge
// maps exactly to maxEdge; truncation may introduce up to 1px of aspect
// drift, which is acceptable.
//
// Defined for positive inputs only. Callers validate upstream.
func Plan(srcW, srcH, maxEdge int, fixedSquare bool) (int, int) {
	if fixedSquare {
		return maxEdge, maxEdge
	}

	longer := srcW
	if srcH > longer {
		longer = srcH
	}

	ratio := float64(maxEdge) / float64(longer)
	return int(float64(srcW) * ratio), int(float64(srcH) * ratio)
}

// PlanVideo computes target dimensions for a video, rounding each edge up to
// the next even integer. Chroma subsampling in the output pixel format
// requires even dimensions.
func PlanVideo(srcW, srcH, maxEdge int, fixedSquare bool) (int, int) {
	w, h := Plan(srcW, srcH, maxEdge, fixedSquare)
	return evenUp(w), evenUp(h)
}

func evenUp(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}
