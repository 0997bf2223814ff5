// Package ptr has helpers for taking pointers to values.
package ptr

func Ref[T any](v T) *T {
	return &v
}
