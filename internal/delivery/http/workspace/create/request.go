package create

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
)

var errInvalidPlan = errors.New("invalid plan")

var validate = validator.New()

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
	Plan string `json:"plan" validate:"omitempty"`
}

var plans = map[string]models.PlanType{
	"":           models.PlanFree,
	"free":       models.PlanFree,
	"pro":        models.PlanPro,
	"enterprise": models.PlanEnterprise,
}

func (req *CreateWorkspaceRequest) validateRequest() error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if _, ok := plans[req.Plan]; !ok {
		return errInvalidPlan
	}

	return nil
}

func (req *CreateWorkspaceRequest) toDTO(ownerUUID uuid.UUID) models.Workspace {
	return models.Workspace{
		OwnerUUID: ownerUUID,
		Name:      req.Name,
		Plan:      plans[req.Plan],
	}
}
