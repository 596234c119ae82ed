package math32

func IsNaN(x float32) bool {
	return x != x
}

func Min(x, y float32) float32 {
	if x < y {
		return x
	}
	return y
}

func Max(x, y float32) float32 {
	if x > y {
		return x
	}
	return y
}

func Clamp(x, min, max float32) float32 {
	return Max(Min(x, max), min)
}

// Saturate clamps x to [0,1]. NaN saturates to 0.
func Saturate(x float32) float32 {
	if IsNaN(x) {
		return 0
	}
	return Clamp(x, 0, 1)
}

func Lerp(a, b, f float32) float32 {
	return a*(1-f) + b*f
}

// CeilDiv returns ceil(n/d) for positive d.
func CeilDiv(n, d int) int {
	return (n + d - 1) / d
}
