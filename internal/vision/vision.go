// Package vision defines the cloud vision/language provider abstraction.
//
// A provider wraps a remote multimodal model and exposes the two operations
// the application needs: describing an image for a screen-reader user and
// simplifying text to an easier reading level. Implementations must be safe
// for concurrent use and must propagate context cancellation.
package vision

import "context"

// Provider is the abstraction over a cloud multimodal model.
type Provider interface {
	// DescribeImage returns a human-readable description of the image.
	// mimeType is the image container type (e.g. "image/png").
	DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error)

	// SimplifyText rewrites text at an easier reading level, preserving
	// meaning.
	SimplifyText(ctx context.Context, text string) (string, error)
}
