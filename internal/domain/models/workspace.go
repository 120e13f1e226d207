package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type PlanType string

const (
	PlanFree       PlanType = "FREE"
	PlanPro        PlanType = "PRO"
	PlanEnterprise PlanType = "ENTERPRISE"
)

type Workspace struct {
	WorkspaceUUID uuid.UUID `db:"uuid" json:"workspace_uuid"`
	OwnerUUID     uuid.UUID `db:"owner_uuid" json:"owner_uuid"`
	Name          string    `db:"name" json:"name"`
	Plan          PlanType  `db:"plan" json:"plan"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	Members       []Member  `json:"members,omitempty"`
}

type Member struct {
	WorkspaceUUID uuid.UUID `db:"workspace_uuid" json:"workspace_uuid"`
	UserUUID      uuid.UUID `db:"user_uuid" json:"user_uuid"`
	Role          Role      `db:"role" json:"role"`
	AddedAt       time.Time `db:"added_at" json:"added_at"`
}
