package domain

import (
	"errors"
	"strings"

	chatdomain "synthetic-persona/backend/internal/features/chat/domain"
)

var (
	ErrDirectoryUnavailable = errors.New("persona directory is not configured")
	ErrPersonaNotFound      = errors.New("persona not found")
)

// Persona is the read-only projection of one row of the audiences table.
type Persona struct {
	ID              int64   `json:"id" gorm:"column:id;primaryKey"`
	AudienceName    string  `json:"audience_name" gorm:"column:audience_name;not null"`
	AudienceSummary *string `json:"audience_summary" gorm:"column:audience_summary"`
}

func (Persona) TableName() string {
	return "audiences"
}

// EffectiveSummary is the text sent to the agent as audience_summary.
func (p Persona) EffectiveSummary() string {
	if p.AudienceSummary == nil || strings.TrimSpace(*p.AudienceSummary) == "" {
		return chatdomain.DefaultAudienceSummary
	}
	return *p.AudienceSummary
}
