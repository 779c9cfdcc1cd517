package services

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"servicelink/config"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	MaxResolutionImages = 5
	MaxImageSize        = 5 * 1024 * 1024 // 5MB per file

	resolutionUploadSegment = "resolutions"
	uploadURLPrefix         = "/uploads"
)

var (
	ErrTooManyFiles    = errors.New("too many files")
	ErrFileTooLarge    = errors.New("file too large")
	ErrNotAnImage      = errors.New("only image files are allowed")
	ErrInvalidImageURL = errors.New("invalid image url")
)

// StagedFile is a file written to the attachment stage before the database
// transaction runs. On transaction failure the caller removes these.
type StagedFile struct {
	Path         string `json:"path"`
	ImageURL     string `json:"imageUrl"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
}

// StagedFileInfo describes a file already on disk, used by the cleanup job
type StagedFileInfo struct {
	Path       string    `json:"path"`
	ImageURL   string    `json:"imageUrl"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// UploadService owns the attachment stage: validation, staging, and removal
// of uploaded resolution images under UPLOAD_DIR/resolutions.
type UploadService struct {
	uploadDir string
	log       logger.Logger
}

func NewUploadService(config config.Config) *UploadService {
	return &UploadService{
		uploadDir: config.UploadDir,
		log:       logger.New("uploadService"),
	}
}

// ValidateAttachments rejects oversized, over-count, and non-image uploads
// before anything touches the filesystem.
func (s *UploadService) ValidateAttachments(files []*multipart.FileHeader) error {
	if len(files) > MaxResolutionImages {
		return ErrTooManyFiles
	}

	for _, file := range files {
		if file.Size > MaxImageSize {
			return ErrFileTooLarge
		}

		contentType := file.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return ErrNotAnImage
		}
	}

	return nil
}

// Stage writes the uploaded files to the attachment stage. If any write
// fails, files staged earlier in the same call are removed before the
// error is returned.
func (s *UploadService) Stage(files []*multipart.FileHeader) ([]StagedFile, error) {
	log := s.log.Function("Stage")

	if err := s.ValidateAttachments(files); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.uploadDir, resolutionUploadSegment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, log.Err("failed to create upload directory", err, "dir", dir)
	}

	staged := make([]StagedFile, 0, len(files))
	for _, file := range files {
		name := stagedFilename(file.Filename)
		path := filepath.Join(dir, name)

		if err := saveMultipartFile(file, path); err != nil {
			s.Remove(staged)
			return nil, log.Err("failed to stage uploaded file", err, "filename", file.Filename)
		}

		staged = append(staged, StagedFile{
			Path:         path,
			ImageURL:     fmt.Sprintf("%s/%s/%s", uploadURLPrefix, resolutionUploadSegment, name),
			OriginalName: file.Filename,
			Size:         file.Size,
		})
	}

	log.Info("Staged uploaded files", "count", len(staged))
	return staged, nil
}

// Remove deletes staged files best-effort; individual failures are logged
// and do not stop the rest of the cleanup.
func (s *UploadService) Remove(files []StagedFile) {
	log := s.log.Function("Remove")

	for _, file := range files {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			log.Er("failed to remove staged file", err, "path", file.Path)
		}
	}
}

// RemoveByURL deletes the backing file for a stored image URL. A missing
// file is tolerated; the database row is the authoritative record.
func (s *UploadService) RemoveByURL(imageURL string) error {
	log := s.log.Function("RemoveByURL")

	path, err := s.pathForURL(imageURL)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Warn("image file already missing", "path", path)
			return nil
		}
		return log.Err("failed to remove image file", err, "path", path)
	}

	return nil
}

// ListStaged walks the attachment stage for the cleanup job
func (s *UploadService) ListStaged() ([]StagedFileInfo, error) {
	log := s.log.Function("ListStaged")

	dir := filepath.Join(s.uploadDir, resolutionUploadSegment)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []StagedFileInfo{}, nil
	}

	var files []StagedFileInfo
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		files = append(files, StagedFileInfo{
			Path:       path,
			ImageURL:   fmt.Sprintf("%s/%s/%s", uploadURLPrefix, resolutionUploadSegment, info.Name()),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, log.Err("failed to walk attachment stage", err, "dir", dir)
	}

	return files, nil
}

// pathForURL maps a stored relative URL back to its disk path, rejecting
// anything that escapes the attachment stage.
func (s *UploadService) pathForURL(imageURL string) (string, error) {
	if !strings.HasPrefix(imageURL, uploadURLPrefix+"/") {
		return "", ErrInvalidImageURL
	}

	relative := strings.TrimPrefix(imageURL, uploadURLPrefix+"/")
	if strings.Contains(relative, "..") {
		return "", ErrInvalidImageURL
	}

	return filepath.Join(s.uploadDir, filepath.FromSlash(relative)), nil
}

func stagedFilename(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}

	return fmt.Sprintf("resolution-%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)
}

func saveMultipartFile(file *multipart.FileHeader, path string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
