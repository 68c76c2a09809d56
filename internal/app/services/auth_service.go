package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/app/repositories"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/auth"
	"github.com/learnway/member/internal/pkg/filestorage"
	"github.com/learnway/member/internal/pkg/metrics"
	"github.com/learnway/member/internal/pkg/session"
	"github.com/rs/zerolog"
)

// AuthService handles authentication operations
type AuthService struct {
	store      repositories.Store
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	identities session.IdentityStore
	images     filestorage.ImageStore
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store repositories.Store,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	identities session.IdentityStore,
	images filestorage.ImageStore,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:      store,
		hasher:     hasher,
		jwtService: jwtService,
		identities: identities,
		images:     images,
		logger:     logger,
	}
}

// Login checks the credentials, issues an access token and stores the identity snapshot
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (_ *dto.AuthResponse, err error) {
	defer func() { metrics.RecordMemberOperation("login", err) }()

	memberID := strings.TrimSpace(req.MemberID)
	member, err := s.store.Members().FindByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Warn().Str("memberId", memberID).Msg("Login attempt for unknown member")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding member: %w", err)
	}

	if !s.hasher.Compare(member.Password, req.Password) {
		s.logger.Warn().Str("memberId", memberID).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateAccessToken(member.MemberID, string(member.Role))
	if err != nil {
		return nil, err
	}

	identity := identityOf(member, s.images.Resolve(member.Image))
	if err := s.identities.Save(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to store identity: %w", err)
	}

	s.logger.Info().Str("memberId", member.MemberID).Msg("Member logged in")
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(expiresIn),
		},
		Member: dto.IdentityData{
			ID:       identity.ID,
			MemberID: identity.MemberID,
			Name:     identity.Name,
			Role:     identity.Role,
			ImageURL: identity.ImageURL,
		},
	}, nil
}

// Logout drops the stored identity
func (s *AuthService) Logout(ctx context.Context, memberID string) error {
	return s.identities.Delete(ctx, memberID)
}
