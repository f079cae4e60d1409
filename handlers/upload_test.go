package handlers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sachiny0106/LinkUp/handlers"
	"github.com/sachiny0106/LinkUp/media"
)

// fakeUploader records the last upload instead of hitting Cloudinary.
type fakeUploader struct {
	lastKind media.Kind
	lastName string
	lastSize int
}

func (f *fakeUploader) Upload(_ context.Context, r io.Reader, opts media.UploadOptions) (*media.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.lastKind = opts.Kind
	f.lastName = opts.Name
	f.lastSize = len(data)
	return &media.Result{
		URL:          "https://cdn.example.com/" + opts.Name,
		PublicID:     "fake/" + opts.Name,
		ResourceType: "image",
	}, nil
}

func uploadRouter(u media.Uploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewUploadHandler(u, zap.NewNop())
	router := gin.New()
	router.POST("/api/upload", h.General)
	router.POST("/api/upload/profile-picture", h.ProfilePicture)
	router.POST("/api/upload/post-image", h.PostImage)
	return router
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+field+`"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func postMultipart(router *gin.Engine, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGeneralUpload(t *testing.T) {
	fake := &fakeUploader{}
	router := uploadRouter(fake)

	body, ct := multipartBody(t, "file", "photo.png", "image/png", []byte("png bytes"))
	w := postMultipart(router, "/api/upload", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "File uploaded successfully", resp["message"])
	assert.Equal(t, "https://cdn.example.com/photo.png", resp["url"])
	assert.Equal(t, "photo.png", resp["fileName"])
	assert.Equal(t, media.KindPostImage, fake.lastKind)
	assert.Equal(t, len("png bytes"), fake.lastSize)
}

func TestGeneralUploadKinds(t *testing.T) {
	cases := []struct {
		contentType string
		wantKind    media.Kind
	}{
		{"image/jpeg", media.KindPostImage},
		{"video/mp4", media.KindPostVideo},
		{"application/pdf", media.KindPostDocument},
		{"text/plain", media.KindPostDocument},
	}
	for _, tc := range cases {
		fake := &fakeUploader{}
		router := uploadRouter(fake)

		body, ct := multipartBody(t, "file", "f.bin", tc.contentType, []byte("x"))
		w := postMultipart(router, "/api/upload", body, ct)
		require.Equal(t, http.StatusOK, w.Code, tc.contentType)
		assert.Equal(t, tc.wantKind, fake.lastKind, tc.contentType)
	}
}

func TestGeneralUploadUnsupportedType(t *testing.T) {
	router := uploadRouter(&fakeUploader{})

	body, ct := multipartBody(t, "file", "app.exe", "application/octet-stream", []byte("x"))
	w := postMultipart(router, "/api/upload", body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "File type not supported", resp["message"])
}

func TestGeneralUploadNoFile(t *testing.T) {
	router := uploadRouter(&fakeUploader{})

	body, ct := multipartBody(t, "wrongField", "f.png", "image/png", []byte("x"))
	w := postMultipart(router, "/api/upload", body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "No file uploaded", resp["message"])
}

func TestProfilePictureUpload(t *testing.T) {
	fake := &fakeUploader{}
	router := uploadRouter(fake)

	body, ct := multipartBody(t, "profilePicture", "me.jpg", "image/jpeg", []byte("jpg"))
	w := postMultipart(router, "/api/upload/profile-picture", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Profile picture uploaded successfully", resp["message"])
	assert.Equal(t, media.KindProfilePicture, fake.lastKind)
}

func TestProfilePictureRejectsNonImage(t *testing.T) {
	router := uploadRouter(&fakeUploader{})

	body, ct := multipartBody(t, "profilePicture", "doc.pdf", "application/pdf", []byte("pdf"))
	w := postMultipart(router, "/api/upload/profile-picture", body, ct)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Only image files are allowed", resp["message"])
}

func TestPostImageUpload(t *testing.T) {
	fake := &fakeUploader{}
	router := uploadRouter(fake)

	body, ct := multipartBody(t, "postImage", "banner.png", "image/png", []byte("png"))
	w := postMultipart(router, "/api/upload/post-image", body, ct)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, media.KindPostImage, fake.lastKind)
}

func TestUploadWithoutUploaderConfigured(t *testing.T) {
	router := uploadRouter(nil)

	body, ct := multipartBody(t, "file", "f.png", "image/png", []byte("x"))
	w := postMultipart(router, "/api/upload", body, ct)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Media storage is not configured", resp["message"])
}
