package marquee

import "github.com/tanema/gween/ease"

// Easing selects a normalized-time remapping curve.
type Easing uint8

const (
	EaseLinear Easing = iota
	EaseCubicIn
	EaseCubicOut
	EaseCubicInOut
)

// String returns the name used in scene files.
func (e Easing) String() string {
	switch e {
	case EaseLinear:
		return "linear"
	case EaseCubicIn:
		return "cubicIn"
	case EaseCubicOut:
		return "cubicOut"
	case EaseCubicInOut:
		return "cubicInOut"
	}
	return "unknown"
}

// ParseEasing is the inverse of Easing.String.
func ParseEasing(s string) (Easing, bool) {
	for e := EaseLinear; e <= EaseCubicInOut; e++ {
		if e.String() == s {
			return e, true
		}
	}
	return 0, false
}

// Func returns the gween curve for e. Unknown values fall back to linear.
func (e Easing) Func() ease.TweenFunc {
	switch e {
	case EaseCubicIn:
		return ease.InCubic
	case EaseCubicOut:
		return ease.OutCubic
	case EaseCubicInOut:
		return ease.InOutCubic
	}
	return ease.Linear
}

// Apply maps normalized progress p in [0, 1] through the curve. The end
// points are returned exactly.
func (e Easing) Apply(p float32) float32 {
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	}
	return e.Func()(p, 0, 1, 1)
}
