package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles, in increasing privilege order.
// Cashiers operate the drawer; supervisors may also edit/delete ledger
// entries of an open day; admins may additionally reopen a closed day and
// run the historical import.
const (
	RoleCashier    = "cashier"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// User stores system users with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Actor is the authorization context threaded into every service operation.
// Role checks live in the services, not in the HTTP layer, so the invariants
// hold regardless of caller.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// Elevated reports whether the actor may edit or delete ledger entries.
func (a Actor) Elevated() bool { return a.Role == RoleSupervisor || a.Role == RoleAdmin }

// Admin reports whether the actor may reopen closed sessions and import history.
func (a Actor) Admin() bool { return a.Role == RoleAdmin }
