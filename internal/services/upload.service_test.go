package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"servicelink/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUploadService(t *testing.T) *UploadService {
	t.Helper()
	return NewUploadService(config.Config{UploadDir: t.TempDir()})
}

func imageFileHeader(name string, contentType string, size int64) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: name,
		Header:   header,
		Size:     size,
	}
}

// parsedFileHeaders builds real multipart headers whose Open() works,
// which manually constructed headers cannot do.
func parsedFileHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, content := range files {
		partHeader := textproto.MIMEHeader{}
		partHeader.Set(
			"Content-Disposition",
			fmt.Sprintf(`form-data; name="images"; filename="%s"`, name),
		)
		partHeader.Set("Content-Type", "image/png")

		part, err := writer.CreatePart(partHeader)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["images"]
}

func TestValidateAttachments(t *testing.T) {
	service := newTestUploadService(t)

	tooMany := make([]*multipart.FileHeader, MaxResolutionImages+1)
	for i := range tooMany {
		tooMany[i] = imageFileHeader("photo.jpg", "image/jpeg", 1024)
	}

	tests := []struct {
		name        string
		files       []*multipart.FileHeader
		expectedErr error
	}{
		{
			name:        "no files is valid",
			files:       nil,
			expectedErr: nil,
		},
		{
			name: "valid images",
			files: []*multipart.FileHeader{
				imageFileHeader("before.jpg", "image/jpeg", 1024),
				imageFileHeader("after.png", "image/png", MaxImageSize),
			},
			expectedErr: nil,
		},
		{
			name:        "too many files",
			files:       tooMany,
			expectedErr: ErrTooManyFiles,
		},
		{
			name: "oversized file",
			files: []*multipart.FileHeader{
				imageFileHeader("huge.jpg", "image/jpeg", MaxImageSize+1),
			},
			expectedErr: ErrFileTooLarge,
		},
		{
			name: "non-image content type",
			files: []*multipart.FileHeader{
				imageFileHeader("notes.pdf", "application/pdf", 1024),
			},
			expectedErr: ErrNotAnImage,
		},
		{
			name: "one bad file rejects the batch",
			files: []*multipart.FileHeader{
				imageFileHeader("ok.png", "image/png", 1024),
				imageFileHeader("script.js", "text/javascript", 10),
			},
			expectedErr: ErrNotAnImage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateAttachments(tt.files)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStageWritesFilesAndURLs(t *testing.T) {
	service := newTestUploadService(t)

	headers := parsedFileHeaders(t, map[string]string{
		"before.png": "before-bytes",
		"after.png":  "after-bytes",
	})

	staged, err := service.Stage(headers)
	require.NoError(t, err)
	require.Len(t, staged, 2)

	for _, file := range staged {
		assert.True(
			t,
			strings.HasPrefix(file.ImageURL, "/uploads/resolutions/resolution-"),
			"unexpected url %s", file.ImageURL,
		)
		assert.True(t, strings.HasSuffix(file.ImageURL, ".png"))

		info, err := os.Stat(file.Path)
		require.NoError(t, err)
		assert.Equal(t, file.Size, info.Size())
	}

	// Filenames must not collide within a batch
	assert.NotEqual(t, staged[0].Path, staged[1].Path)
}

func TestStageRejectsInvalidBatchWithoutWriting(t *testing.T) {
	service := newTestUploadService(t)

	headers := parsedFileHeaders(t, map[string]string{"ok.png": "bytes"})
	headers[0].Header.Set("Content-Type", "application/pdf")

	staged, err := service.Stage(headers)
	assert.ErrorIs(t, err, ErrNotAnImage)
	assert.Nil(t, staged)

	files, err := service.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestRemoveDeletesStagedFiles(t *testing.T) {
	service := newTestUploadService(t)

	headers := parsedFileHeaders(t, map[string]string{"photo.png": "bytes"})
	staged, err := service.Stage(headers)
	require.NoError(t, err)
	require.Len(t, staged, 1)

	service.Remove(staged)

	_, err = os.Stat(staged[0].Path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is a no-op
	service.Remove(staged)
}

func TestRemoveByURL(t *testing.T) {
	service := newTestUploadService(t)

	headers := parsedFileHeaders(t, map[string]string{"photo.png": "bytes"})
	staged, err := service.Stage(headers)
	require.NoError(t, err)

	tests := []struct {
		name        string
		imageURL    string
		expectedErr error
	}{
		{
			name:     "existing file",
			imageURL: staged[0].ImageURL,
		},
		{
			name:     "already missing file is tolerated",
			imageURL: "/uploads/resolutions/resolution-0-0.png",
		},
		{
			name:        "wrong prefix rejected",
			imageURL:    "/etc/passwd",
			expectedErr: ErrInvalidImageURL,
		},
		{
			name:        "path traversal rejected",
			imageURL:    "/uploads/../secrets.txt",
			expectedErr: ErrInvalidImageURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.RemoveByURL(tt.imageURL)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err = os.Stat(staged[0].Path)
	assert.True(t, os.IsNotExist(err))
}

func TestListStaged(t *testing.T) {
	service := newTestUploadService(t)

	files, err := service.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, files, "empty stage before anything is uploaded")

	headers := parsedFileHeaders(t, map[string]string{
		"a.png": "aaaa",
		"b.png": "bb",
	})
	_, err = service.Stage(headers)
	require.NoError(t, err)

	files, err = service.ListStaged()
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, file := range files {
		assert.True(t, strings.HasPrefix(file.ImageURL, "/uploads/resolutions/"))
		assert.False(t, file.ModifiedAt.IsZero())
		assert.Equal(t, filepath.Base(file.Path), filepath.Base(file.ImageURL))
	}
}
