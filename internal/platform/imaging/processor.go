// Package imaging normalizes uploaded avatar images: whatever comes in as
// JPEG or PNG leaves as a fixed-size PNG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// Avatars are stored as square PNGs of this edge length.
const (
	AvatarSize = 250
)

// ErrDecodeFailed is returned when the uploaded bytes cannot be decoded as
// an image. Callers treat this as a validation failure, not a server fault.
var ErrDecodeFailed = errors.New("cannot decode image data")

// Processor converts raw uploaded image bytes into the stored avatar format.
type Processor interface {
	// Process decodes the image, scales and crops it to AvatarSize x
	// AvatarSize and re-encodes it as PNG.
	// Returns ErrDecodeFailed if the data is not a decodable image.
	Process(data []byte) ([]byte, error)
}

// AvatarProcessor implements Processor using the imaging library.
type AvatarProcessor struct{}

// NewAvatarProcessor creates a new AvatarProcessor.
func NewAvatarProcessor() *AvatarProcessor {
	return &AvatarProcessor{}
}

// Ensure AvatarProcessor implements Processor interface
var _ Processor = (*AvatarProcessor)(nil)

// Process implements the Processor interface.
func (p *AvatarProcessor) Process(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	// Fill scales then center-crops, so non-square inputs still produce an
	// exact AvatarSize x AvatarSize result.
	resized := imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode avatar as PNG: %w", err)
	}

	return buf.Bytes(), nil
}
