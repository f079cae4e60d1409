package media

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sachiny0106/LinkUp/apperror"
)

// Cloudinary uploads through the hosted Cloudinary API, configured from
// a CLOUDINARY_URL credential string.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, r io.Reader, opts UploadOptions) (*Result, error) {
	params := uploadParams(opts)

	res, err := c.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return nil, apperror.Upstream("Error uploading file", err)
	}

	return &Result{
		URL:          res.SecureURL,
		PublicID:     res.PublicID,
		ResourceType: res.ResourceType,
	}, nil
}

func uploadParams(opts UploadOptions) uploader.UploadParams {
	publicID := fmt.Sprintf("%s_%d", string(opts.Kind), time.Now().UnixNano())

	switch opts.Kind {
	case KindProfilePicture:
		return uploader.UploadParams{
			Folder:         "mini-linkedin/profile-pictures",
			PublicID:       publicID,
			Transformation: "c_fill,g_face,w_400,h_400,q_auto,f_auto",
		}
	case KindPostVideo:
		return uploader.UploadParams{
			Folder:         "mini-linkedin/post-videos",
			PublicID:       publicID,
			Transformation: "c_limit,w_1280,h_720,q_auto",
		}
	case KindPostDocument:
		return uploader.UploadParams{
			Folder:   "mini-linkedin/post-documents",
			PublicID: publicID,
		}
	default:
		return uploader.UploadParams{
			Folder:         "mini-linkedin/post-images",
			PublicID:       publicID,
			Transformation: "c_limit,w_1200,h_630,q_auto,f_auto",
		}
	}
}
