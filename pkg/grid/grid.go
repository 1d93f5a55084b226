// Package grid maps between flat row-major indices and (x, y) cells.
package grid

// GetIndex returns the row-major index of (x, y) in a grid cols wide.
func GetIndex(x, y, cols int) int {
	return y*cols + x
}

// Contains reports whether (x, y) lies inside a cols × rows grid.
func Contains(x, y, cols, rows int) bool {
	return x >= 0 && x < cols && y >= 0 && y < rows
}
