package requestController

import (
	"context"
	"strings"
	"testing"

	. "servicelink/internal/models"
	"servicelink/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// stubRequestRepo serves a fixed request; a nil request means not found
type stubRequestRepo struct {
	repositories.RequestRepository
	request *Request
}

func (s *stubRequestRepo) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Request, error) {
	if s.request == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.request, nil
}

func newValidationController() *RequestController {
	return &RequestController{log: logger.New("requestController")}
}

func testUser(role UserRole) *User {
	return &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Name:          "Test User",
		Role:          role,
	}
}

func TestCreateRequestValidation(t *testing.T) {
	controller := newValidationController()
	user := testUser(RoleSubmitter)

	tests := []struct {
		name    string
		request *CreateRequestRequest
	}{
		{
			name:    "missing title",
			request: &CreateRequestRequest{Category: "plumbing"},
		},
		{
			name: "title too long",
			request: &CreateRequestRequest{
				Title:    strings.Repeat("x", MaxTitleLength+1),
				Category: "plumbing",
			},
		},
		{
			name:    "missing category",
			request: &CreateRequestRequest{Title: "Leaky faucet"},
		},
		{
			name: "invalid urgency",
			request: &CreateRequestRequest{
				Title:    "Leaky faucet",
				Category: "plumbing",
				Urgency:  "catastrophic",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := controller.CreateRequest(context.Background(), user, tt.request)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, result)
		})
	}
}

func TestListRequestsFilterValidation(t *testing.T) {
	controller := newValidationController()

	tests := []struct {
		name    string
		request *ListRequestsRequest
	}{
		{
			name:    "invalid status filter",
			request: &ListRequestsRequest{Status: "open"},
		},
		{
			name:    "invalid urgency filter",
			request: &ListRequestsRequest{Urgency: "urgent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := controller.ListRequests(context.Background(), tt.request)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, result)
		})
	}
}

func TestUpdateRequestAdminOnly(t *testing.T) {
	title := "Leaky faucet in 12B"
	controller := &RequestController{
		requestRepo: &stubRequestRepo{request: &Request{
			BaseModel: BaseModel{ID: 1},
			Title:     "Leaky faucet",
			Category:  "plumbing",
			Status:    StatusPending,
		}},
		log: logger.New("requestController"),
	}

	for _, role := range []UserRole{RoleSubmitter, RoleTechnician} {
		result, err := controller.UpdateRequest(
			context.Background(),
			testUser(role),
			1,
			&UpdateRequestRequest{Title: &title},
		)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Nil(t, result)
	}
}

func TestUpdateRequestNotFound(t *testing.T) {
	title := "Leaky faucet in 12B"
	controller := &RequestController{
		requestRepo: &stubRequestRepo{},
		log:         logger.New("requestController"),
	}

	result, err := controller.UpdateRequest(
		context.Background(),
		testUser(RoleAdmin),
		1,
		&UpdateRequestRequest{Title: &title},
	)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, result)
}

func TestUpdateStatusRejectsInvalidStatus(t *testing.T) {
	controller := newValidationController()
	user := testUser(RoleTechnician)

	result, err := controller.UpdateStatus(
		context.Background(),
		user,
		1,
		&UpdateStatusRequest{Status: "closed"},
	)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)

	result, err = controller.UpdateStatus(
		context.Background(),
		user,
		0,
		&UpdateStatusRequest{Status: StatusResolved},
	)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)
}

func TestAssignTechnicianRequiresID(t *testing.T) {
	controller := newValidationController()
	user := testUser(RoleAdmin)

	result, err := controller.AssignTechnician(context.Background(), user, 1, &AssignRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)
}

func TestBulkUpdateValidation(t *testing.T) {
	controller := newValidationController()
	user := testUser(RoleAdmin)
	status := StatusInProgress

	tooMany := make([]int, MaxBulkIDs+1)
	for i := range tooMany {
		tooMany[i] = i + 1
	}

	badStatus := RequestStatus("archived")
	badUrgency := RequestUrgency("urgent")

	tests := []struct {
		name    string
		request *BulkUpdateRequest
	}{
		{
			name:    "empty ids",
			request: &BulkUpdateRequest{Updates: BulkUpdateFieldsBody{Status: &status}},
		},
		{
			name: "too many ids",
			request: &BulkUpdateRequest{
				IDs:     tooMany,
				Updates: BulkUpdateFieldsBody{Status: &status},
			},
		},
		{
			name: "invalid id",
			request: &BulkUpdateRequest{
				IDs:     []int{1, 0},
				Updates: BulkUpdateFieldsBody{Status: &status},
			},
		},
		{
			name:    "no update fields",
			request: &BulkUpdateRequest{IDs: []int{1}},
		},
		{
			name: "invalid status",
			request: &BulkUpdateRequest{
				IDs:     []int{1},
				Updates: BulkUpdateFieldsBody{Status: &badStatus},
			},
		},
		{
			name: "invalid urgency",
			request: &BulkUpdateRequest{
				IDs:     []int{1},
				Updates: BulkUpdateFieldsBody{Urgency: &badUrgency},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := controller.BulkUpdate(context.Background(), user, tt.request)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, result)
		})
	}
}

func TestAddCommentValidation(t *testing.T) {
	controller := newValidationController()
	user := testUser(RoleSubmitter)

	result, err := controller.AddComment(context.Background(), user, 1, &AddCommentRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)

	result, err = controller.AddComment(context.Background(), user, 1, &AddCommentRequest{
		Comment: strings.Repeat("x", MaxCommentLength+1),
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, result)
}
