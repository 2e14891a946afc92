package util

import "cmp"

// Clamp clamps val to the range [low, high] for any ordered type.
func Clamp[T cmp.Ordered](val, low, high T) T {
	return min(max(val, low), high)
}
