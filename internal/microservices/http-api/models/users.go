package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// CodeState tracks the confirmation code lifecycle.
type CodeState string

const (
	CodeNone     CodeState = "none"     // never issued
	CodeIssued   CodeState = "issued"   // one usable attempt outstanding
	CodeConsumed CodeState = "consumed" // an attempt was made; a new signup is required
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"size:150;not null;default:''" json:"first_name"`
	LastName  string    `gorm:"size:150;not null;default:''" json:"last_name"`
	Bio       string    `gorm:"type:text;not null;default:''" json:"bio"`
	Role      Role      `gorm:"size:16;not null;default:'user'" json:"role"`
	IsStaff   bool      `gorm:"not null;default:false" json:"-"`
	CodeHash  string    `gorm:"column:confirmation_code_hash;not null;default:''" json:"-"` // bcrypt hash, never the code
	CodeState CodeState `gorm:"size:16;not null;default:'none'" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin treats the staff flag as equivalent to the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}
