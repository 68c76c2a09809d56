package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/learnway/member/internal/app/models"
	"github.com/learnway/member/internal/app/repositories"
	"github.com/learnway/member/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// AdminAccount describes the bootstrap administrator
type AdminAccount struct {
	MemberID string
	Password string
	Name     string
	Email    string
}

// EnsureAdmin creates the administrator member when it does not exist yet.
// It returns false without error when no account is configured or it already exists.
func EnsureAdmin(
	ctx context.Context,
	store repositories.Store,
	hasher auth.PasswordHasher,
	defaultImage string,
	account AdminAccount,
	lgr zerolog.Logger,
) (bool, error) {
	if account.MemberID == "" || account.Password == "" {
		lgr.Debug().Msg("No admin account configured, skipping seed")
		return false, nil
	}

	exists, err := store.Members().ExistsByMemberID(ctx, account.MemberID)
	if err != nil {
		return false, fmt.Errorf("error checking admin account: %w", err)
	}
	if exists {
		lgr.Debug().Str("memberId", account.MemberID).Msg("Admin account already present")
		return false, nil
	}

	hash, err := hasher.Hash(account.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Member{
		MemberID: account.MemberID,
		Password: hash,
		Name:     account.Name,
		Birth:    time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC),
		Telecom:  models.TelecomSKT,
		Role:     models.RoleAdmin,
		Email:    account.Email,
		Gender:   models.GenderMale,
		Image:    defaultImage,
	}
	err = store.WithTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		_, err := tx.Members().Create(ctx, admin)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("error creating admin account: %w", err)
	}

	lgr.Info().Str("memberId", account.MemberID).Msg("Admin account created")
	return true, nil
}
