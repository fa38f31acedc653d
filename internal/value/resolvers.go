package value

import (
	"fmt"
	"math"
)

func number(v TrackValue) (float32, error) {
	n, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("want number, got %s: %w", v.Kind(), ErrWrongVariant)
	}
	return n, nil
}

// Bool is true for any nonzero number.
func Bool(v TrackValue, _ AssetContext) (bool, error) {
	n, err := number(v)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// Uint truncates toward zero. Negative and NaN inputs saturate to 0, values
// past the range to the maximum.
func Uint(v TrackValue, _ AssetContext) (uint, error) {
	n, err := number(v)
	if err != nil {
		return 0, err
	}
	f := float64(n)
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0, nil
	case f >= math.MaxUint64:
		return math.MaxUint, nil
	}
	return uint(f), nil
}

// Int truncates toward zero, saturating at the int range.
func Int(v TrackValue, _ AssetContext) (int, error) {
	n, err := number(v)
	if err != nil {
		return 0, err
	}
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return 0, nil
	case f >= math.MaxInt64:
		return math.MaxInt, nil
	case f <= math.MinInt64:
		return math.MinInt, nil
	}
	return int(f), nil
}

func Float32(v TrackValue, _ AssetContext) (float32, error) {
	return number(v)
}

// AssetResolver returns a resolver for asset references of type tag.
func AssetResolver(tag TypeTag) ResolveFunc {
	return func(v TrackValue, assets AssetContext) (any, error) {
		ap, ok := v.AssetPath()
		if !ok {
			return nil, fmt.Errorf("want asset, got %s: %w", v.Kind(), ErrWrongVariant)
		}
		if ap.Type != tag {
			return nil, fmt.Errorf("want %s, got %s: %w", tag, ap.Type, ErrTypeMismatch)
		}
		if assets == nil {
			return nil, fmt.Errorf("%s: %w", ap.Path, ErrAssetNotLoaded)
		}
		native, ok := assets.ResolveAsset(tag, ap.Path)
		if !ok {
			return nil, fmt.Errorf("%s: %w", ap.Path, ErrAssetNotLoaded)
		}
		return native, nil
	}
}
