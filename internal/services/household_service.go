// internal/services/household_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hogarlab/despensa-backend/internal/models"
	"github.com/hogarlab/despensa-backend/internal/utils"
)

// HouseholdService manages the partition key everything else hangs off.
// Membership is one household per user; joining moves the user.
type HouseholdService struct {
	db   *gorm.DB
	auth *AuthService
}

type CreateHouseholdRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type JoinHouseholdRequest struct {
	InviteCode string `json:"invite_code" validate:"required,invite_code"`
}

func NewHouseholdService(db *gorm.DB, auth *AuthService) *HouseholdService {
	return &HouseholdService{db: db, auth: auth}
}

// Create makes a household and moves the creator into it. A fresh token pair
// comes back because the household id lives in the JWT claims.
func (s *HouseholdService) Create(userID uuid.UUID, req *CreateHouseholdRequest) (*models.Household, *AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		violations := &ValidationError{}
		for _, v := range utils.GetValidationErrors(err) {
			violations.Add(v.Field, v.Message)
		}
		return nil, nil, violations
	}

	user, err := s.auth.GetUserByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user.HouseholdID != nil {
		return nil, nil, &InvalidStateError{Reason: "user already belongs to a household"}
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	household := &models.Household{
		Name:       req.Name,
		InviteCode: inviteCode,
	}
	if err := s.db.Create(household).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create household: %w", err)
	}

	user.HouseholdID = &household.ID
	if err := s.db.Save(user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to attach user to household: %w", err)
	}

	auth, err := s.auth.tokensFor(user)
	if err != nil {
		return nil, nil, err
	}
	return household, auth, nil
}

// Join moves a user into the household matching the invite code.
func (s *HouseholdService) Join(userID uuid.UUID, req *JoinHouseholdRequest) (*models.Household, *AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		violations := &ValidationError{}
		for _, v := range utils.GetValidationErrors(err) {
			violations.Add(v.Field, v.Message)
		}
		return nil, nil, violations
	}

	user, err := s.auth.GetUserByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user.HouseholdID != nil {
		return nil, nil, &InvalidStateError{Reason: "user already belongs to a household"}
	}

	var household models.Household
	code := strings.ToUpper(strings.TrimSpace(req.InviteCode))
	if err := s.db.Where("invite_code = ?", code).First(&household).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Resource: "household", ID: code}
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	user.HouseholdID = &household.ID
	if err := s.db.Save(user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to attach user to household: %w", err)
	}

	auth, err := s.auth.tokensFor(user)
	if err != nil {
		return nil, nil, err
	}
	return &household, auth, nil
}

// Get loads a household with its members.
func (s *HouseholdService) Get(householdID uuid.UUID) (*models.Household, error) {
	var household models.Household
	if err := s.db.Preload("Members").First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "household", ID: householdID.String()}
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &household, nil
}
