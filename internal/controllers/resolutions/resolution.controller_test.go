package resolutionController

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"servicelink/config"
	. "servicelink/internal/models"
	"servicelink/internal/repositories"
	"servicelink/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newValidationController(t *testing.T) *ResolutionController {
	t.Helper()
	return &ResolutionController{
		uploadService: services.NewUploadService(config.Config{UploadDir: t.TempDir()}),
		log:           logger.New("resolutionController"),
	}
}

func resolver() *User {
	return &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Name:          "Tech",
		Role:          RoleTechnician,
	}
}

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: name, Header: header, Size: size}
}

// parsedImageHeaders builds real multipart headers whose Open() works,
// which manually constructed headers cannot do.
func parsedImageHeaders(t *testing.T, files map[string]string) []*multipart.FileHeader {
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

// passthroughTransaction runs the function without a real transaction so the
// workflow can be driven against stub repositories.
type passthroughTransaction struct{}

func (passthroughTransaction) Execute(
	ctx context.Context,
	fn func(context.Context, *gorm.DB) error,
) error {
	return fn(ctx, nil)
}

type stubRequestRepo struct {
	repositories.RequestRepository
	request *Request
}

func (s *stubRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Request, error) {
	return s.request, nil
}

func (s *stubRequestRepo) UpdateStatus(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	status RequestStatus,
	resolvedAt *time.Time,
) (*Request, error) {
	s.request.Status = status
	return s.request, nil
}

type stubResolutionRepo struct {
	repositories.ResolutionRepository
	createErr    error
	addImagesErr error
}

func (s *stubResolutionRepo) GetByRequestID(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
) (*Resolution, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubResolutionRepo) Create(ctx context.Context, tx *gorm.DB, resolution *Resolution) error {
	if s.createErr != nil {
		return s.createErr
	}
	resolution.ID = 7
	return nil
}

func (s *stubResolutionRepo) AddImages(
	ctx context.Context,
	tx *gorm.DB,
	images []*ResolutionImage,
) error {
	return s.addImagesErr
}

type stubHistoryRepo struct {
	repositories.HistoryRepository
}

func (s *stubHistoryRepo) Record(
	ctx context.Context,
	tx *gorm.DB,
	requestID int,
	actorID *uuid.UUID,
	action HistoryAction,
	detail map[string]any,
) error {
	return nil
}

func newWorkflowController(t *testing.T, resolutionRepo *stubResolutionRepo) *ResolutionController {
	t.Helper()
	return &ResolutionController{
		resolutionRepo: resolutionRepo,
		requestRepo: &stubRequestRepo{request: &Request{
			BaseModel:   BaseModel{ID: 1},
			Title:       "Broken door latch",
			Category:    "carpentry",
			Status:      StatusInProgress,
			SubmittedBy: uuid.New(),
		}},
		historyRepo:        &stubHistoryRepo{},
		transactionService: passthroughTransaction{},
		uploadService:      services.NewUploadService(config.Config{UploadDir: t.TempDir()}),
		log:                logger.New("resolutionController"),
	}
}

func TestCreateResolutionValidation(t *testing.T) {
	controller := newValidationController(t)
	user := resolver()
	negative := decimal.NewFromInt(-5)

	tooManyFiles := make([]*multipart.FileHeader, services.MaxResolutionImages+1)
	for i := range tooManyFiles {
		tooManyFiles[i] = fileHeader("photo.jpg", "image/jpeg", 1024)
	}

	tests := []struct {
		name      string
		requestID int
		request   *CreateResolutionRequest
		files     []*multipart.FileHeader
	}{
		{
			name:      "missing request id",
			requestID: 0,
			request:   &CreateResolutionRequest{ResolutionNotes: "fixed"},
		},
		{
			name:      "missing notes",
			requestID: 1,
			request:   &CreateResolutionRequest{},
		},
		{
			name:      "notes too long",
			requestID: 1,
			request: &CreateResolutionRequest{
				ResolutionNotes: strings.Repeat("x", MaxResolutionNotesLength+1),
			},
		},
		{
			name:      "negative cost",
			requestID: 1,
			request: &CreateResolutionRequest{
				ResolutionNotes: "fixed",
				Cost:            &negative,
			},
		},
		{
			name:      "too many images",
			requestID: 1,
			request:   &CreateResolutionRequest{ResolutionNotes: "fixed"},
			files:     tooManyFiles,
		},
		{
			name:      "non-image attachment",
			requestID: 1,
			request:   &CreateResolutionRequest{ResolutionNotes: "fixed"},
			files: []*multipart.FileHeader{
				fileHeader("report.pdf", "application/pdf", 1024),
			},
		},
		{
			name:      "oversized attachment",
			requestID: 1,
			request:   &CreateResolutionRequest{ResolutionNotes: "fixed"},
			files: []*multipart.FileHeader{
				fileHeader("huge.jpg", "image/jpeg", services.MaxImageSize+1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := controller.CreateResolution(
				context.Background(),
				user,
				tt.requestID,
				tt.request,
				tt.files,
			)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, result)
		})
	}
}

func TestCreateResolutionFailureRemovesStagedFiles(t *testing.T) {
	controller := newWorkflowController(t, &stubResolutionRepo{
		addImagesErr: errors.New("images insert failed"),
	})

	files := parsedImageHeaders(t, map[string]string{
		"before.png": "before-bytes",
		"after.png":  "after-bytes",
	})

	result, err := controller.CreateResolution(
		context.Background(),
		resolver(),
		1,
		&CreateResolutionRequest{ResolutionNotes: "replaced the latch"},
		files,
	)
	require.Error(t, err)
	assert.Nil(t, result)

	staged, err := controller.uploadService.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, staged, "failed transaction must leave no staged files behind")
}

func TestCreateResolutionDuplicateRaceReturnsConflict(t *testing.T) {
	controller := newWorkflowController(t, &stubResolutionRepo{
		createErr: fmt.Errorf("failed to create resolution: %w", gorm.ErrDuplicatedKey),
	})

	files := parsedImageHeaders(t, map[string]string{"photo.png": "photo-bytes"})

	result, err := controller.CreateResolution(
		context.Background(),
		resolver(),
		1,
		&CreateResolutionRequest{ResolutionNotes: "replaced the latch"},
		files,
	)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Nil(t, result)

	staged, err := controller.uploadService.ListStaged()
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestUpdateResolutionValidation(t *testing.T) {
	controller := newValidationController(t)
	user := resolver()

	result, err := controller.UpdateResolution(context.Background(), user, 1, &UpdateResolutionRequest{}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)

	result, err = controller.UpdateResolution(context.Background(), user, 0, &UpdateResolutionRequest{
		ResolutionNotes: "follow-up",
	}, nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)
}

func TestDeleteResolutionImageValidation(t *testing.T) {
	controller := newValidationController(t)
	user := resolver()

	assert.ErrorIs(t, controller.DeleteResolutionImage(context.Background(), user, 0, 1), ErrValidation)
	assert.ErrorIs(t, controller.DeleteResolutionImage(context.Background(), user, 1, 0), ErrValidation)
}
