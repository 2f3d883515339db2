package models

// Transform is a pre-persist step applied explicitly by the write path, such as hashing a
// new password or deriving a slug.
type Transform[T any] func(*T) error

// ApplyTransforms runs each transform in order and stops at the first error.
func ApplyTransforms[T any](v *T, transforms ...Transform[T]) error {
	for _, t := range transforms {
		if t == nil {
			continue
		}
		if err := t(v); err != nil {
			return err
		}
	}
	return nil
}
