package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikifed/shibgate/auth/repository"
)

func seedAccount(t *testing.T, accounts repository.AccountRepository, username string, groups ...string) *repository.Account {
	t.Helper()

	account, err := accounts.Create(context.Background(), &repository.Account{
		Username:         username,
		PasswordDisabled: true,
	})
	require.NoError(t, err)

	for _, g := range groups {
		require.NoError(t, accounts.AddGroup(context.Background(), account.ID, g))
	}

	return account
}

func TestSyncGroupsAdditive(t *testing.T) {
	cfg := testConfig()
	cfg.Groups = GroupSyncConfig{Prefix: "pfx"}

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe", "A")

	b.SyncGroups(ctx, account, "pfx:B;pfx:C")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, groups)
}

func TestSyncGroupsFullSync(t *testing.T) {
	cfg := testConfig()
	cfg.Groups = GroupSyncConfig{Prefix: "pfx", DeleteExisting: true}

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe", "A")

	b.SyncGroups(ctx, account, "pfx:B;pfx:C")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, groups)
}

func TestSyncGroupsIgnoresForeignPrefix(t *testing.T) {
	cfg := testConfig()
	cfg.Groups = GroupSyncConfig{Prefix: "pfx"}

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe", "A")

	b.SyncGroups(ctx, account, "other:B")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groups)
}

func TestSyncGroupsWithoutPrefixTakesTokenVerbatim(t *testing.T) {
	cfg := testConfig()

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe")

	b.SyncGroups(ctx, account, "editors;admins")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"editors", "admins"}, groups)
}

func TestSyncGroupsEntitlementStylePrefix(t *testing.T) {
	// isMemberOf values commonly look like "wiki.example#editors": the
	// prefix is stripped as a literal, not matched as a colon field.
	cfg := testConfig()
	cfg.Groups = GroupSyncConfig{Prefix: "wiki.example#"}

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe")

	b.SyncGroups(ctx, account, "wiki.example#editors;wiki.example#admins;other.example#root")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"editors", "admins"}, groups)
}

func TestSyncGroupsSkipsEmptyTokens(t *testing.T) {
	cfg := testConfig()

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe")

	b.SyncGroups(ctx, account, ";editors;;")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"editors"}, groups)
}

func TestSyncGroupsEmptyClaimIsNoOp(t *testing.T) {
	cfg := testConfig()

	accounts := newTestAccounts(t)
	b := NewBinder(accounts, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe", "A")

	b.SyncGroups(ctx, account, "")

	groups, err := accounts.ListGroups(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, groups)
}

// groupFailingAccounts fails every group mutation
type groupFailingAccounts struct {
	repository.AccountRepository
}

func (f *groupFailingAccounts) AddGroup(ctx context.Context, accountID, group string) error {
	return assert.AnError
}

func (f *groupFailingAccounts) ClearGroups(ctx context.Context, accountID string) error {
	return assert.AnError
}

func TestBindSurvivesGroupSyncFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Groups = GroupSyncConfig{DeleteExisting: true}

	accounts := newTestAccounts(t)
	b := NewBinder(&groupFailingAccounts{AccountRepository: accounts}, newTestSessions(t, cfg), cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe")

	session, err := b.Bind(ctx, account, Principal{Username: "jdoe", GroupClaim: "editors"})
	require.NoError(t, err, "group sync errors must not block session issuance")
	assert.NotEmpty(t, session.Token)
}

func TestBindIssuesSession(t *testing.T) {
	cfg := testConfig()

	accounts := newTestAccounts(t)
	sessions := newTestSessions(t, cfg)
	b := NewBinder(accounts, sessions, cfg.Groups)
	ctx := context.Background()

	account := seedAccount(t, accounts, "Jdoe")

	session, err := b.Bind(ctx, account, Principal{Username: "jdoe"})
	require.NoError(t, err)

	record, err := sessions.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, record.AccountID)
	assert.Equal(t, "Jdoe", record.Username)
}
