package seed

import (
	"context"
	"errors"
	"fmt"

	"charityportal/internal/auth"
	"charityportal/internal/utils"
	"charityportal/pkg/types"

	"github.com/sirupsen/logrus"
)

// DefaultPassword is set on every seeded account.
const DefaultPassword = "password123"

type userSeed struct {
	Name        string
	Email       string
	Role        types.Role
	ContactInfo *string
}

var seedUsers = []userSeed{
	{Name: "Portal Admin", Email: "admin+seed@example.com", Role: types.RoleAdmin},
	{Name: "Harbor Food Bank", Email: "harbor+seed@example.com", Role: types.RoleNGO, ContactInfo: utils.StringPtr("617-555-0100")},
	{Name: "Northside Shelter", Email: "northside+seed@example.com", Role: types.RoleNGO, ContactInfo: utils.StringPtr("617-555-0142")},
	{Name: "Ava Williams", Email: "ava.williams+seed@example.com", Role: types.RoleDonor},
	{Name: "Liam Johnson", Email: "liam.johnson+seed@example.com", Role: types.RoleDonor},
	{Name: "Mia Davis", Email: "mia.davis+seed@example.com", Role: types.RoleDonor},
}

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
}

// SeedUsers creates any seed account that does not exist yet and returns
// every seed account keyed by email.
func SeedUsers(ctx context.Context, logger logrus.FieldLogger, users UserStore) (map[string]*types.User, error) {
	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return nil, err
	}

	seeded := make(map[string]*types.User, len(seedUsers))
	created := 0

	for _, s := range seedUsers {
		existing, err := users.UserByEmail(ctx, s.Email)
		if err == nil {
			seeded[s.Email] = existing
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up seed user %s: %w", s.Email, err)
		}

		user := &types.User{
			Name:         s.Name,
			Email:        s.Email,
			PasswordHash: hash,
			Role:         s.Role,
			ContactInfo:  s.ContactInfo,
		}
		if err := users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create seed user %s: %w", s.Email, err)
		}

		seeded[s.Email] = user
		created++
	}

	logger.WithFields(logrus.Fields{
		"created":  created,
		"existing": len(seedUsers) - created,
	}).Info("seed users ready")

	return seeded, nil
}

// UsersByRole filters the seeded accounts, in seed order.
func UsersByRole(seeded map[string]*types.User, role types.Role) []*types.User {
	out := make([]*types.User, 0)
	for _, s := range seedUsers {
		if u, ok := seeded[s.Email]; ok && u.Role == role {
			out = append(out, u)
		}
	}
	return out
}
