package imagesrc

import "fmt"

// ImageLoadError reports that an image could not be fetched or decoded.
// It is transient from the caller's point of view: nothing partial is
// produced and the user may retry with the same or another source.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

func loadErr(source string, err error) error {
	return &ImageLoadError{Source: shorten(source), Err: err}
}

// shorten keeps data URLs out of error messages and logs.
func shorten(source string) string {
	const limit = 64
	if len(source) <= limit {
		return source
	}
	return source[:limit] + "..."
}
