package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/app/repositories"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/auth"
	"github.com/learnway/member/internal/pkg/filestorage"
	"github.com/learnway/member/internal/pkg/helpers"
	"github.com/learnway/member/internal/pkg/metrics"
	"github.com/learnway/member/internal/pkg/session"
	"github.com/rs/zerolog"
)

// MemberService defines the member workflows
type MemberService interface {
	// Join registers a new member with role ROLE_USER
	Join(ctx context.Context, req *dto.JoinRequest) (*models.Member, error)
	// IsUsernameTaken reports whether a member or consultant already uses the login id
	IsUsernameTaken(ctx context.Context, memberID string) (bool, error)
	// GetMemberInfo returns the edit form of a member
	GetMemberInfo(ctx context.Context, memberID string) (*dto.MemberFormResponse, error)
	// UpdateMemberInfo applies the edit form of the member identified by memberID
	UpdateMemberInfo(ctx context.Context, memberID string, req *dto.UpdateMemberRequest) (*models.Member, error)
	FindAllMembers(ctx context.Context, page, size int) (*dto.MemberListResponse, error)
	SearchMembersByName(ctx context.Context, name string, page, size int) (*dto.MemberListResponse, error)
	UpdateMemberNote(ctx context.Context, id int64, note string) (*models.Member, error)
}

type memberServiceImpl struct {
	store      repositories.Store
	images     filestorage.ImageStore
	hasher     auth.PasswordHasher
	identities session.IdentityStore
	logger     zerolog.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(
	store repositories.Store,
	images filestorage.ImageStore,
	hasher auth.PasswordHasher,
	identities session.IdentityStore,
	logger zerolog.Logger,
) MemberService {
	return &memberServiceImpl{
		store:      store,
		images:     images,
		hasher:     hasher,
		identities: identities,
		logger:     logger,
	}
}

func duplicateIdentity(memberID string) error {
	return apperrors.NewFieldError("username", apperrors.ErrDuplicateIdentity,
		fmt.Sprintf("%q is already in use", memberID))
}

func passwordMismatch() error {
	return apperrors.NewFieldError("confirmPassword", apperrors.ErrPasswordMismatch,
		"password and confirmation do not match")
}

// IsUsernameTaken checks both identity types sharing the login id namespace
func (s *memberServiceImpl) IsUsernameTaken(ctx context.Context, memberID string) (bool, error) {
	taken, err := s.store.Members().ExistsByMemberID(ctx, memberID)
	if err != nil || taken {
		return taken, err
	}
	return s.store.Consultants().ExistsByConsultantID(ctx, memberID)
}

// Join validates the form, stores the avatar and persists the member with its target universities.
// Nothing is written until every validation has passed.
func (s *memberServiceImpl) Join(ctx context.Context, req *dto.JoinRequest) (_ *models.Member, err error) {
	defer func() { metrics.RecordMemberOperation("join", err) }()

	memberID := strings.TrimSpace(req.Username)
	log := s.logger.With().Str("memberId", memberID).Logger()

	taken, err := s.IsUsernameTaken(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("error checking member id: %w", err)
	}
	if taken {
		log.Warn().Msg("Registration rejected, member id in use")
		return nil, duplicateIdentity(memberID)
	}

	if req.Password != req.ConfirmPassword {
		return nil, passwordMismatch()
	}

	profile, err := req.ToProfile()
	if err != nil {
		return nil, err
	}
	slots, err := models.NormalizeTargetUniSlots(req.TargetUnis)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	image, err := s.images.Store(req.Avatar)
	if err != nil {
		return nil, err
	}

	member := models.Member{
		MemberID: memberID,
		Password: hash,
		Role:     models.RoleUser,
		Image:    image,
	}.WithProfile(profile)

	var created []*models.TargetUni
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		id, err := tx.Members().Create(ctx, &member)
		if err != nil {
			return err
		}
		member.ID = id

		created = models.PlanTargetUnis(id, nil, slots).Created
		for _, t := range created {
			tid, err := tx.TargetUnis().Create(ctx, t)
			if err != nil {
				return fmt.Errorf("error creating target university rank %d: %w", t.Rank, err)
			}
			t.ID = tid
		}
		return nil
	})
	if err != nil {
		s.images.Delete(image)
		log.Error().Err(err).Msg("Failed to persist new member")
		return nil, err
	}

	member.TargetUnis = created
	log.Info().Int64("id", member.ID).Int("targetUnis", len(created)).Msg("Member registered")
	return &member, nil
}

// GetMemberInfo loads the member and its target universities padded to three ranks
func (s *memberServiceImpl) GetMemberInfo(ctx context.Context, memberID string) (*dto.MemberFormResponse, error) {
	member, err := s.store.Members().FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	unis, err := s.store.TargetUnis().FindByMember(ctx, member.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading target universities: %w", err)
	}
	member.TargetUnis = unis

	form := dto.NewMemberFormResponse(member, s.images.Resolve(member.Image))
	return &form, nil
}

// UpdateMemberInfo overwrites the profile, optionally the password and avatar, and reconciles
// target universities by rank. A new avatar replaces the old file only after the record is persisted.
func (s *memberServiceImpl) UpdateMemberInfo(ctx context.Context, memberID string, req *dto.UpdateMemberRequest) (_ *models.Member, err error) {
	defer func() { metrics.RecordMemberOperation("update", err) }()

	log := s.logger.With().Str("memberId", memberID).Logger()

	current, err := s.store.Members().FindByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	changePassword := req.NewPassword != ""
	if changePassword && req.NewPassword != req.ConfirmPassword {
		return nil, passwordMismatch()
	}

	profile, err := req.ToProfile()
	if err != nil {
		return nil, err
	}
	slots, err := models.NormalizeTargetUniSlots(req.TargetUnis)
	if err != nil {
		return nil, err
	}

	updated := current.WithProfile(profile)
	if changePassword {
		hash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated = updated.WithPassword(hash)
	}

	replaceImage := !req.Avatar.IsEmpty()
	if replaceImage {
		image, err := s.images.Store(req.Avatar)
		if err != nil {
			return nil, err
		}
		updated = updated.WithImage(image)
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Members().Update(ctx, &updated); err != nil {
			return err
		}

		existing, err := tx.TargetUnis().FindByMember(ctx, updated.ID)
		if err != nil {
			return fmt.Errorf("error loading target universities: %w", err)
		}
		plan := models.PlanTargetUnis(updated.ID, existing, slots)
		for _, t := range plan.Renamed {
			if err := tx.TargetUnis().UpdateName(ctx, t.ID, t.Name); err != nil {
				return fmt.Errorf("error renaming target university rank %d: %w", t.Rank, err)
			}
		}
		for _, t := range plan.Created {
			if _, err := tx.TargetUnis().Create(ctx, t); err != nil {
				return fmt.Errorf("error creating target university rank %d: %w", t.Rank, err)
			}
		}

		if plan.IsEmpty() {
			updated.TargetUnis = existing
			return nil
		}
		updated.TargetUnis, err = tx.TargetUnis().FindByMember(ctx, updated.ID)
		return err
	})
	if err != nil {
		if replaceImage {
			s.images.Delete(updated.Image)
		}
		log.Error().Err(err).Msg("Failed to persist member update")
		return nil, err
	}

	if replaceImage {
		s.images.Delete(current.Image)
	}

	s.refreshIdentity(ctx, &updated)
	log.Info().Bool("passwordChanged", changePassword).Bool("imageReplaced", replaceImage).Msg("Member updated")
	return &updated, nil
}

// refreshIdentity stores the new snapshot; the update is already committed so failures are only logged
func (s *memberServiceImpl) refreshIdentity(ctx context.Context, m *models.Member) {
	if err := s.identities.Save(ctx, identityOf(m, s.images.Resolve(m.Image))); err != nil {
		s.logger.Warn().Err(err).Str("memberId", m.MemberID).Msg("Failed to refresh member identity")
	}
}

// FindAllMembers returns a 0-based page of members ordered by id
func (s *memberServiceImpl) FindAllMembers(ctx context.Context, page, size int) (*dto.MemberListResponse, error) {
	page, size = helpers.NormalizePage(page, size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	members, total, err := s.store.Members().FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, members, total, page, size)
}

// SearchMembersByName filters by a case-insensitive name fragment; an empty fragment lists everyone
func (s *memberServiceImpl) SearchMembersByName(ctx context.Context, name string, page, size int) (*dto.MemberListResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.FindAllMembers(ctx, page, size)
	}

	page, size = helpers.NormalizePage(page, size)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	members, total, err := s.store.Members().FindByNameContaining(ctx, name, offset, limit)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, members, total, page, size)
}

func (s *memberServiceImpl) listResponse(ctx context.Context, members []*models.Member, total int64, page, size int) (*dto.MemberListResponse, error) {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	unis, err := s.store.TargetUnis().FindByMembers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading target universities: %w", err)
	}

	resp := &dto.MemberListResponse{
		Members:    make([]dto.MemberResponse, 0, len(members)),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}
	for _, m := range members {
		m.TargetUnis = unis[m.ID]
		resp.Members = append(resp.Members, dto.NewMemberResponse(m, s.images.Resolve(m.Image)))
	}
	return resp, nil
}

// UpdateMemberNote replaces the admin note and returns the updated member
func (s *memberServiceImpl) UpdateMemberNote(ctx context.Context, id int64, note string) (_ *models.Member, err error) {
	defer func() { metrics.RecordMemberOperation("update_note", err) }()

	if err := s.store.Members().UpdateNote(ctx, id, note); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("id", id).Msg("Member note updated")
	return s.store.Members().FindByID(ctx, id)
}
