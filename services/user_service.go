package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"blogapp/global"
	"blogapp/models"
	"blogapp/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,16}$`)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileInput struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
	Bio    *string `json:"bio"`
}

// Register creates a user with the default role.
func Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, newError(ErrValidation, "Name, email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return nil, newError(ErrValidation, "The email address is invalid")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, newError(ErrValidation, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	db := global.Db.WithContext(ctx)
	var taken int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return nil, newError(ErrValidation, "User with this email already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := global.Db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

func GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := global.Db.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// UpdateProfile changes the editable profile fields of a user.
func UpdateProfile(ctx context.Context, id string, in ProfileInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, newError(ErrValidation, "Name must not be empty")
		}
		updates["name"] = name
	}
	if in.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*in.Avatar)
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}

	user, err := GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := global.Db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return GetUser(ctx, id)
}

// ListAuthors returns every user with their likedBy and followers sets.
func ListAuthors(ctx context.Context) ([]models.User, error) {
	db := global.Db.WithContext(ctx)

	var users []models.User
	if err := db.Order("created_at desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	var likes []models.AuthorLike
	if err := db.Order("created_at").Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("list author likes: %w", err)
	}
	var follows []models.Follow
	if err := db.Order("created_at").Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("list follows: %w", err)
	}

	likedBy := make(map[string][]string)
	for _, l := range likes {
		likedBy[l.AuthorID] = append(likedBy[l.AuthorID], l.UserID)
	}
	followers := make(map[string][]string)
	for _, f := range follows {
		followers[f.AuthorID] = append(followers[f.AuthorID], f.FollowerID)
	}
	for i := range users {
		users[i].LikedBy = nonNil(likedBy[users[i].ID])
		users[i].Followers = nonNil(followers[users[i].ID])
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
