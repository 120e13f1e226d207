package addmember

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tumbleweedd/workspace_system/internal/domain/models"
)

var validate = validator.New()

type AddMemberRequest struct {
	UserUUID string `json:"user_uuid" validate:"required,uuid"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN MEMBER"`
}

func (req *AddMemberRequest) validateRequest() error {
	return validate.Struct(req)
}

func (req *AddMemberRequest) toDTO(workspaceUUID uuid.UUID) models.Member {
	return models.Member{
		WorkspaceUUID: workspaceUUID,
		UserUUID:      uuid.MustParse(req.UserUUID),
		Role:          models.Role(req.Role),
	}
}
