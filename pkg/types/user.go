package types

import (
	"net/mail"
	"strings"
	"time"
)

type Role string

const (
	RoleDonor Role = "Donor"
	RoleNGO   Role = "NGO"
	RoleAdmin Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleNGO, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	ContactInfo  *string   `db:"contact_info" json:"contact_info"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PublicUser is the user view returned by the API; it never carries the password hash.
type PublicUser struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	ContactInfo *string   `json:"contact_info"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		ContactInfo: u.ContactInfo,
		CreatedAt:   u.CreatedAt,
	}
}

type RegisterRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Role        Role    `json:"role"`
	ContactInfo *string `json:"contact_info"`
}

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// Validate normalizes the request in place: name and email are trimmed, email
// is lower-cased and a missing role defaults to Donor.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	missing := make([]string, 0, 3)
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return Validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return Validationf("Invalid email address")
	}

	if len(r.Password) > MaxPasswordBytes {
		return Validationf("Password must be at most %d bytes", MaxPasswordBytes)
	}

	if r.Role == "" {
		r.Role = RoleDonor
	}
	if !r.Role.Valid() {
		return Validationf("Invalid role. Must be: Donor, NGO, or Admin")
	}

	r.ContactInfo = trimmedOrNil(r.ContactInfo)

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || r.Password == "" {
		return Validationf("Missing required fields: email, password")
	}
	return nil
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *PublicUser `json:"user"`
}
