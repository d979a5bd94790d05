// Package bitmap provides a compressed set of record ordinals backed by
// Roaring bitmaps.
package bitmap
