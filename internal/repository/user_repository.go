package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"life-goals/internal/model"
)

// UserRepository maps Telegram accounts to backend credentials.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Touch finds or creates the user for a Telegram account and refreshes
// the profile fields.
func (r *UserRepository) Touch(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	db := r.db.WithContext(ctx)
	var user model.User
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = model.User{
			TelegramID: telegramID,
			FirstName:  firstName,
			LastName:   lastName,
			Username:   username,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.FirstName != firstName || user.LastName != lastName || user.Username != username {
		err := db.Model(&user).Updates(map[string]any{
			"first_name": firstName,
			"last_name":  lastName,
			"username":   username,
		}).Error
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.FirstName, user.LastName, user.Username = firstName, lastName, username
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveTokens links the user to a backend account.
func (r *UserRepository) SaveTokens(ctx context.Context, user *model.User, backendUsername, access, refresh string) error {
	err := r.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"backend_username": backendUsername,
		"access_token":     access,
		"refresh_token":    refresh,
	}).Error
	if err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	user.BackendUsername, user.AccessToken, user.RefreshToken = backendUsername, access, refresh
	return nil
}

// UpdateAccessToken stores a refreshed access token.
func (r *UserRepository) UpdateAccessToken(ctx context.Context, user *model.User, access string) error {
	if err := r.db.WithContext(ctx).Model(user).Update("access_token", access).Error; err != nil {
		return fmt.Errorf("update access token: %w", err)
	}
	user.AccessToken = access
	return nil
}

// ClearTokens unlinks the backend account.
func (r *UserRepository) ClearTokens(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"backend_username": "",
		"access_token":     "",
		"refresh_token":    "",
	}).Error
	if err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	user.BackendUsername, user.AccessToken, user.RefreshToken = "", "", ""
	return nil
}

// ListLinked returns users that have backend credentials.
func (r *UserRepository) ListLinked(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("access_token <> ''").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list linked users: %w", err)
	}
	return users, nil
}
