package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Derived from gorm.Model
type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        uuid.UUID `gorm:"primaryKey;default:uuidv7_sub_ms()"`
}

// Challenge keeps the platform-assigned id as primary key; position fixes the
// fetch order so repeated fetches are identical for fixed data.
type Challenge struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string `gorm:"primaryKey"`
	Name        string
	Category    string
	Description string
	Points      int
	Flag        string
	Position    int
	Files       []ChallengeFile `gorm:"foreignKey:ChallengeID"`
}

type ChallengeFile struct {
	Model
	ChallengeID string
	Name        string
	URL         string `gorm:"column:url"`
	Headers     datatypes.JSONMap
}

type Solve struct {
	Model
	ChallengeID string
	SolvedAt    time.Time
}

type SubmissionAttempt struct {
	Model
	ChallengeID string
	Flag        string
	Status      string
	Request     datatypes.JSON
}
