// Package media wraps the external media store. Uploads convert a raw
// byte stream plus a declared kind into a stored object reference; the
// caller persists only the returned URL and public id.
package media

import (
	"context"
	"io"
)

// Kind selects the storage folder and transformation applied upstream.
type Kind string

const (
	KindPostImage      Kind = "post-image"
	KindPostVideo      Kind = "post-video"
	KindPostDocument   Kind = "post-document"
	KindProfilePicture Kind = "profile-picture"
)

type UploadOptions struct {
	Kind Kind
	Name string // original file name, used for the public id
}

type Result struct {
	URL          string
	PublicID     string
	ResourceType string
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (*Result, error)
}
