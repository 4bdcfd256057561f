// Package utils provides small value conversion helpers shared across the
// XML and text editing layers.
package utils
