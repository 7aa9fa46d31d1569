package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lib/pq"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"peerlearn.app/server/internal/model"
	"peerlearn.app/server/internal/repository"
	"peerlearn.app/server/internal/signup"
	"peerlearn.app/server/pkg/apperror"
	"peerlearn.app/server/pkg/storage"
)

type UpdateProfileInput struct {
	FullName    *string  `json:"full_name"`
	Bio         *string  `json:"bio"`
	College     *string  `json:"college"`
	University  *string  `json:"university"`
	Course      *string  `json:"course"`
	YearOfStudy *string  `json:"year_of_study"`
	Subjects    []string `json:"subjects"`
	Interests   []string `json:"interests"`
}

type ProfileService interface {
	GetProfile(ctx context.Context, accountID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*model.Profile, error)
	UploadAvatar(ctx context.Context, accountID string, file io.Reader, fileName string) (*model.Profile, error)
	TouchLastActive(ctx context.Context, accountID string) error
}

type profileService struct {
	profiles  repository.ProfileRepository
	storage   storage.ImageStorage
	search    SearchService
	sanitizer *bluemonday.Policy
}

func NewProfileService(
	profiles repository.ProfileRepository,
	imageStorage storage.ImageStorage,
	search SearchService,
) ProfileService {
	return &profileService{
		profiles:  profiles,
		storage:   imageStorage,
		search:    search,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *profileService) GetProfile(ctx context.Context, accountID string) (*model.Profile, error) {
	profile, err := s.profiles.FindByAccountID(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("profile not found: %w", apperror.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*model.Profile, error) {
	profile, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("full name cannot be empty: %w", apperror.ErrInvalidInput)
		}
		profile.FullName = name
	}
	if input.Bio != nil {
		bio := s.sanitizer.Sanitize(*input.Bio)
		profile.Bio = &bio
	}
	if input.College != nil {
		profile.College = input.College
	}
	if input.University != nil {
		profile.University = input.University
	}
	if input.Course != nil {
		profile.Course = input.Course
	}
	if input.YearOfStudy != nil {
		year, err := signup.ParseYear(*input.YearOfStudy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), apperror.ErrInvalidInput)
		}
		profile.YearOfStudy = &year
	}
	if input.Subjects != nil {
		profile.Subjects = pq.StringArray(input.Subjects)
	}
	if input.Interests != nil {
		profile.Interests = pq.StringArray(input.Interests)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	if err := s.search.IndexProfile(profile); err != nil {
		logIndexFailure(profile.AccountID, err)
	}

	return profile, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, accountID string, file io.Reader, fileName string) (*model.Profile, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("avatar storage is not configured: %w", apperror.ErrProviderUnavailable)
	}

	profile, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.UploadImage(ctx, file, "avatars", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldURL := profile.AvatarURL
	profile.AvatarURL = &url
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}

	if oldURL != nil && *oldURL != "" {
		_ = s.storage.DeleteImage(ctx, *oldURL)
	}

	if err := s.search.IndexProfile(profile); err != nil {
		logIndexFailure(profile.AccountID, err)
	}

	return profile, nil
}

func (s *profileService) TouchLastActive(ctx context.Context, accountID string) error {
	return s.profiles.TouchLastActive(ctx, accountID)
}
