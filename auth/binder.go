package auth

import (
	"context"
	"strings"

	"github.com/wikifed/shibgate/auth/repository"
	"github.com/wikifed/shibgate/internal/slogging"
)

// groupClaimDelimiter separates group tokens in the asserted claim
const groupClaimDelimiter = ";"

// Binder establishes the local session for a resolved account and
// synchronizes its group memberships against the asserted claim.
type Binder struct {
	accounts repository.AccountRepository
	sessions *SessionManager
	cfg      GroupSyncConfig
	logger   *slogging.Logger
}

// NewBinder creates a session and group binder
func NewBinder(accounts repository.AccountRepository, sessions *SessionManager, cfg GroupSyncConfig) *Binder {
	return &Binder{
		accounts: accounts,
		sessions: sessions,
		cfg:      cfg,
		logger:   slogging.Get(),
	}
}

// Bind issues a session for the account and applies the principal's group
// claim. Group synchronization is best-effort: failures are logged and
// counted but never block session issuance.
func (b *Binder) Bind(ctx context.Context, account *repository.Account, principal Principal) (Session, error) {
	session, err := b.sessions.Issue(ctx, account)
	if err != nil {
		return Session{}, err
	}

	b.SyncGroups(ctx, account, principal.GroupClaim)

	return session, nil
}

// SyncGroups applies the delimiter-separated group claim under the
// configured policy. With DeleteExisting set, current memberships are
// cleared first (full sync); otherwise the claim only ever grants.
func (b *Binder) SyncGroups(ctx context.Context, account *repository.Account, claim string) {
	if b.cfg.DeleteExisting {
		if err := b.accounts.ClearGroups(ctx, account.ID); err != nil {
			b.logger.Warn("Group sync: failed to clear memberships for %s: %v", account.Username, err)
			groupSyncFailures.Inc()
		}
	}

	if claim == "" {
		return
	}

	for _, token := range strings.Split(claim, groupClaimDelimiter) {
		group, ok := b.resolveGroupToken(token)
		if !ok {
			continue
		}

		if err := b.accounts.AddGroup(ctx, account.ID, group); err != nil {
			b.logger.Warn("Group sync: failed to add %s to group %s: %v", account.Username, group, err)
			groupSyncFailures.Inc()
		}
	}
}

// resolveGroupToken maps one claim token to a local group name. Without a
// prefix filter the whole token is the group. With a filter, a
// "prefix:name" token contributes name, and a token that merely begins
// with the literal prefix contributes the remainder; anything else is
// skipped with a warning.
func (b *Binder) resolveGroupToken(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	if b.cfg.Prefix == "" {
		return token, true
	}

	if fields := strings.SplitN(token, ":", 2); len(fields) == 2 && fields[0] == b.cfg.Prefix {
		return fields[1], true
	}

	if strings.HasPrefix(token, b.cfg.Prefix) && len(token) > len(b.cfg.Prefix) {
		return strings.TrimPrefix(strings.TrimPrefix(token, b.cfg.Prefix), ":"), true
	}

	b.logger.Warn("Group sync: token %q does not carry prefix %q, skipping", token, b.cfg.Prefix)
	return "", false
}
