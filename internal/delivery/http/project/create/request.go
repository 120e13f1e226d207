package create

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
)

var validate = validator.New()

type CreateProjectRequest struct {
	WorkspaceUUID string `json:"workspace_uuid" validate:"required,uuid"`
	Name          string `json:"name" validate:"required,min=1,max=128"`
}

func (req *CreateProjectRequest) validateRequest() error {
	return validate.Struct(req)
}

func (req *CreateProjectRequest) toDTO() models.Project {
	return models.Project{
		WorkspaceUUID: uuid.MustParse(req.WorkspaceUUID),
		Name:          req.Name,
	}
}
