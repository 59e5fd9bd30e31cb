package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/wikifed/shibgate/auth/repository"
	"github.com/wikifed/shibgate/internal/slogging"
)

// Reconciler binds a Principal to a durable local account: lookup by
// canonical username, or creation on first login. Creation is at-most-once
// per canonical username; the store's unique constraint on username
// serializes concurrent first logins, and the loser of the race resolves
// through the lookup path.
type Reconciler struct {
	accounts repository.AccountRepository
	logger   *slogging.Logger
}

// NewReconciler creates an account reconciler
func NewReconciler(accounts repository.AccountRepository) *Reconciler {
	return &Reconciler{
		accounts: accounts,
		logger:   slogging.Get(),
	}
}

// Reconcile returns the account for the principal and whether it already
// existed. Display name and email are applied only at creation; an
// existing account's attributes are never overwritten on re-login. Every
// path forcibly disables local password login for the account — a
// federation-managed account must never accept a local password, and the
// flag is repaired on read, not only at creation.
func (r *Reconciler) Reconcile(ctx context.Context, principal Principal) (*repository.Account, bool, error) {
	if principal.Username == "" {
		return nil, false, ErrMissingPrincipal
	}

	canonical := CanonicalUsername(principal.Username)

	account, err := r.accounts.GetByUsername(ctx, canonical)
	if err == nil {
		return account, true, r.repairPasswordFlag(ctx, account)
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("%w: lookup for %s: %v", ErrAccountPersist, canonical, err)
	}

	created, err := r.accounts.Create(ctx, &repository.Account{
		Username:         canonical,
		DisplayName:      principal.DisplayName,
		Email:            principal.Email,
		PasswordDisabled: true,
	})
	if err == nil {
		r.logger.Info("Created account %s for federated principal", canonical)
		return created, false, nil
	}

	// Lost the create-race: another request persisted the account between
	// our lookup and create. Resolve through lookup.
	if errors.Is(err, repository.ErrDuplicateAccount) {
		account, lookupErr := r.accounts.GetByUsername(ctx, canonical)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("%w: post-race lookup for %s: %v", ErrAccountPersist, canonical, lookupErr)
		}
		return account, true, r.repairPasswordFlag(ctx, account)
	}

	return nil, false, fmt.Errorf("%w: create %s: %v", ErrAccountPersist, canonical, err)
}

// repairPasswordFlag persists the disabled-password invariant when an
// account is found with it unset.
func (r *Reconciler) repairPasswordFlag(ctx context.Context, account *repository.Account) error {
	if account.PasswordDisabled {
		return nil
	}

	r.logger.Warn("Account %s had local password login enabled; disabling", account.Username)
	if err := r.accounts.SetPasswordDisabled(ctx, account.ID, true); err != nil {
		return fmt.Errorf("%w: disable password for %s: %v", ErrAccountPersist, account.Username, err)
	}
	account.PasswordDisabled = true

	return nil
}
