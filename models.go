package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the only role issued by this service
	RoleUser UserRole = "user"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	TokenVersion  int        `bun:"token_version,notnull,default:0" json:"token_version"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

var _ Identity = (*userIdentity)(nil)

// Identity returns the identity view of the record
func (u *User) Identity() Identity {
	return &userIdentity{user: u}
}

type userIdentity struct {
	user *User
}

func (i *userIdentity) ID() string       { return i.user.ID.String() }
func (i *userIdentity) Username() string { return i.user.Username }
func (i *userIdentity) Email() string    { return i.user.Email }
func (i *userIdentity) Role() string     { return i.user.Role }
