package services

import "github.com/agrienergy/agri-produce/internal/models"

// Authorize is the guard every role-scoped entry point calls before doing work.
func Authorize(user *models.User, role models.RoleName) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.HasRole(role) {
		return ErrForbidden
	}
	return nil
}
