package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ProjectUUID   uuid.UUID `db:"uuid" json:"project_uuid"`
	WorkspaceUUID uuid.UUID `db:"workspace_uuid" json:"workspace_uuid"`
	Name          string    `db:"name" json:"name"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
