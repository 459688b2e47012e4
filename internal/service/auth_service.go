package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/auth"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/media"
	"github.com/vidshare/backend/internal/models"
	"github.com/vidshare/backend/internal/repository"
)

type AuthService struct {
	store      repository.Store
	media      media.Store
	jwtService *auth.JWTService
}

func NewAuthService(store repository.Store, mediaStore media.Store, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		store:      store,
		media:      mediaStore,
		jwtService: jwtService,
	}
}

// Register creates a user. The profile image, when given, is uploaded before
// anything is persisted so a failed upload leaves no user behind.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest, profilePic []byte) (*models.User, error) {
	user := &models.User{
		ID:       uuid.New(),
		Username: trimmed(req.Username),
		Email:    trimmed(req.Email),
	}
	if err := user.Validate(); err != nil {
		return nil, errs.Validation(err.Error())
	}
	if len(req.Password) < 8 {
		return nil, errs.Validation("password must be at least 8 characters")
	}

	users := s.store.Users()
	if exists, err := users.EmailExists(ctx, user.Email); err != nil {
		return nil, err
	} else if exists {
		return nil, errs.Conflict("Email already in use")
	}
	if exists, err := users.UsernameExists(ctx, user.Username); err != nil {
		return nil, err
	} else if exists {
		return nil, errs.Conflict("Username already taken")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, errs.Internal("Failed to hash password", err)
	}
	user.PasswordHash = hash

	var uploaded *media.Asset
	if len(profilePic) > 0 {
		if err := media.Validate(profilePic, media.KindImage); err != nil {
			return nil, err
		}
		uploaded, err = s.media.Upload(ctx, profilePic, media.KindImage, media.FolderProfiles)
		if err != nil {
			return nil, asUploadFailed(err)
		}
		user.ProfilePic = &uploaded.URL
	}

	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	if err := users.Create(ctx, user); err != nil {
		if uploaded != nil {
			discardMedia(ctx, s.media, "register aborted", mediaRef{uploaded.PublicID, media.KindImage})
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, trimmed(email))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, errs.Unauthorized("Invalid credentials")
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, errs.Internal("Failed to generate token", err)
	}

	return &models.LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    *user,
	}, nil
}

// Resolve maps a session token to the user it was issued for.
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, errs.Unauthorized("Not authorized, no token")
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, errs.Unauthorized("Token expired")
		}
		return nil, errs.Unauthorized("Not authorized, token failed")
	}
	return s.Me(ctx, claims.UserID)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// asUploadFailed keeps validation and upload errors as they are and
// classifies anything else as an upload failure.
func asUploadFailed(err error) error {
	switch errs.KindOf(err) {
	case errs.KindValidation, errs.KindUploadFailed:
		return err
	}
	return errs.UploadFailed("Failed to upload file", err)
}
