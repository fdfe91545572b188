package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"goldsure-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Authenticate matches the stored email exactly and checks the secret
// against the stored credential hash.
func (l *Ledger) Authenticate(ctx context.Context, email, secret string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || secret == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := l.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
