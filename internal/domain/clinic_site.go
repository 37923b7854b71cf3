package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ClinicSite represents a clinic location within the healthcare network
type ClinicSite struct {
	Meta
	Name        string  `json:"name"`
	Code        string  `json:"code"` // unique site code
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	PostalCode  *string `json:"postal_code,omitempty"`
	Country     *string `json:"country,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	IsActive    bool    `json:"is_active"`
	Description *string `json:"description,omitempty"`
}

// NewClinicSite creates a new active clinic site
func NewClinicSite(name, code string) *ClinicSite {
	return &ClinicSite{
		Meta:     Meta{ID: uuid.NewString()},
		Name:     name,
		Code:     code,
		IsActive: true,
	}
}

func (s *ClinicSite) Kind() string { return KindClinicSite }

func (s *ClinicSite) Snapshot() map[string]any {
	return map[string]any{
		"name":        s.Name,
		"code":        s.Code,
		"address":     s.Address,
		"city":        s.City,
		"state":       s.State,
		"postal_code": s.PostalCode,
		"country":     s.Country,
		"phone":       s.Phone,
		"email":       s.Email,
		"is_active":   s.IsActive,
		"description": s.Description,
	}
}

// Validate checks the clinic site's required fields
func (s *ClinicSite) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewDomainError("site name is required")
	}
	if strings.TrimSpace(s.Code) == "" {
		return NewDomainError("site code is required")
	}
	if len(s.Code) > 50 {
		return NewDomainError("site code must not exceed 50 characters")
	}
	if s.Email != nil && !strings.Contains(*s.Email, "@") {
		return NewDomainError("invalid email format")
	}
	return nil
}
