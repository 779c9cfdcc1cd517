package seed

import (
	"time"

	"servicelink/config"

	. "servicelink/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is shared by every seeded account. Development only.
const seedPassword = "password"

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users, err := seedUsers(db, log)
	if err != nil {
		return log.Err("failed to seed users", err)
	}

	if err := seedRequests(db, users, log); err != nil {
		return log.Err("failed to seed requests", err)
	}

	return nil
}

func seedUsers(db *gorm.DB, log logger.Logger) (map[string]User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, log.Err("failed to hash seed password", err)
	}

	users := []User{
		{
			Name:         "Admin User",
			Email:        "admin@example.com",
			Role:         RoleAdmin,
			PasswordHash: string(hash),
			IsActive:     true,
		},
		{
			Name:         "Terry Technician",
			Email:        "terry@example.com",
			Role:         RoleTechnician,
			PasswordHash: string(hash),
			IsActive:     true,
		},
		{
			Name:         "Sam Submitter",
			Email:        "sam@example.com",
			Role:         RoleSubmitter,
			PasswordHash: string(hash),
			IsActive:     true,
		},
		{
			Name:         "Ada Lovelace",
			Email:        "ada@example.com",
			Role:         RoleSubmitter,
			PasswordHash: string(hash),
			IsActive:     true,
		},
	}

	byEmail := make(map[string]User, len(users))
	for i := range users {
		log.Info("Seeding user", "email", users[i].Email, "role", users[i].Role)
		if err := db.Create(&users[i]).Error; err != nil {
			return nil, log.Err("failed to create user", err, "email", users[i].Email)
		}
		byEmail[users[i].Email] = users[i]
	}

	return byEmail, nil
}

func seedRequests(db *gorm.DB, users map[string]User, log logger.Logger) error {
	sam := users["sam@example.com"]
	ada := users["ada@example.com"]
	terry := users["terry@example.com"]

	requests := []Request{
		{
			Title:       "Leaking faucet in break room",
			Description: "The cold water tap drips constantly and is getting worse.",
			Category:    "plumbing",
			Location:    "Building A, 2nd floor break room",
			Urgency:     UrgencyMedium,
			Status:      StatusPending,
			SubmittedBy: sam.ID,
		},
		{
			Title:       "Flickering lights in hallway",
			Description: "Fluorescent tubes near the east stairwell flicker all day.",
			Category:    "electrical",
			Location:    "Building B, east stairwell",
			Urgency:     UrgencyLow,
			Status:      StatusInProgress,
			SubmittedBy: ada.ID,
			AssignedTo:  &terry.ID,
		},
		{
			Title:       "HVAC not cooling server room",
			Description: "Room temperature is climbing past safe limits.",
			Category:    "hvac",
			Location:    "Building A, server room",
			Urgency:     UrgencyCritical,
			Status:      StatusInProgress,
			SubmittedBy: sam.ID,
			AssignedTo:  &terry.ID,
		},
	}

	for i := range requests {
		log.Info("Seeding request", "title", requests[i].Title)
		if err := db.Create(&requests[i]).Error; err != nil {
			return log.Err("failed to create request", err, "title", requests[i].Title)
		}

		history := RequestHistory{
			RequestID: requests[i].ID,
			ActorID:   &requests[i].SubmittedBy,
			Action:    HistoryCreated,
		}
		if err := db.Create(&history).Error; err != nil {
			return log.Err("failed to create request history", err)
		}
	}

	comment := RequestComment{
		RequestID: requests[1].ID,
		UserID:    terry.ID,
		Comment:   "Ordered replacement ballasts, should arrive this week.",
	}
	if err := db.Create(&comment).Error; err != nil {
		return log.Err("failed to create comment", err)
	}

	// One fully resolved request so the dashboard has resolution data
	resolvedAt := time.Now().Add(-24 * time.Hour)
	resolved := Request{
		Title:       "Broken door handle",
		Description: "Main entrance handle came loose.",
		Category:    "general",
		Location:    "Building A, main entrance",
		Urgency:     UrgencyHigh,
		Status:      StatusResolved,
		SubmittedBy: ada.ID,
		AssignedTo:  &terry.ID,
		ResolvedAt:  &resolvedAt,
	}
	if err := db.Create(&resolved).Error; err != nil {
		return log.Err("failed to create resolved request", err)
	}

	resolution := Resolution{
		RequestID:       resolved.ID,
		ResolvedBy:      terry.ID,
		ResolutionNotes: "Replaced the handle assembly and tightened the strike plate.",
		ResolvedAt:      resolvedAt,
	}
	if err := db.Create(&resolution).Error; err != nil {
		return log.Err("failed to create resolution", err)
	}

	history := RequestHistory{
		RequestID: resolved.ID,
		ActorID:   &terry.ID,
		Action:    HistoryResolved,
	}
	if err := db.Create(&history).Error; err != nil {
		return log.Err("failed to create resolution history", err)
	}

	return nil
}
