package service

import (
	"context"

	"shipits/internal/models"
	"shipits/internal/repository"
	"shipits/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID   uint
	Username string
	Bio      string
	Avatar   string
	Major    string
	GradYear int
}

type UpdateThemeInput struct {
	UserID      uint
	ThemeMode   string
	AccentColor string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if taken != nil {
			return nil, models.NewValidationError("Username already taken")
		}
		user.Username = in.Username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.Major != "" {
		user.Major = in.Major
	}
	if in.GradYear != 0 {
		if in.GradYear < 1900 || in.GradYear > 2100 {
			return nil, models.NewValidationError("Graduation year out of range")
		}
		user.GradYear = in.GradYear
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateTheme persists the user's theme preferences. Theme state is the only
// cross-session UI state kept on the server.
func (s *UserService) UpdateTheme(ctx context.Context, in UpdateThemeInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.ThemeMode != "" {
		switch in.ThemeMode {
		case models.ThemeLight, models.ThemeDark, models.ThemeSystem:
			user.ThemeMode = in.ThemeMode
		default:
			return nil, models.NewValidationError("Theme mode must be light, dark, or system")
		}
	}
	if in.AccentColor != "" {
		if err := validation.ValidateAccentColor(in.AccentColor); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.AccentColor = in.AccentColor
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SetRole promotes or demotes the target user. Callers must already have
// verified the acting user is an admin; an admin cannot change their own role.
func (s *UserService) SetRole(ctx context.Context, actorID, targetID uint, role string) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.NewValidationError("Role must be user or admin")
	}
	if actorID == targetID {
		return nil, models.NewValidationError("You cannot change your own role")
	}

	if err := s.userRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// IsAdmin is handed to other services as their admin-check callback.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
