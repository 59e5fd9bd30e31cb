package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wikifed/shibgate/auth/db"
	"github.com/wikifed/shibgate/auth/repository"
	"github.com/wikifed/shibgate/internal/slogging"
)

// Service runs the reconciliation pipeline: Extractor, Reconciler, Binder,
// strictly sequential, once per inbound request that lacks a session. It
// also exposes the account and session read APIs the HTTP surface uses.
type Service struct {
	cfg        Config
	accounts   repository.AccountRepository
	sessions   *SessionManager
	reconciler *Reconciler
	binder     *Binder
	logger     *slogging.Logger
}

// LoginResult is the outcome of one successful pipeline run
type LoginResult struct {
	Account  *repository.Account
	Session  Session
	Existing bool
}

// NewService creates the service from live connections
func NewService(dbManager *db.Manager, cfg Config) (*Service, error) {
	if dbManager == nil {
		return nil, errors.New("database manager is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	gormDB := dbManager.Gorm()
	if gormDB == nil {
		return nil, errors.New("account store connection is required")
	}
	redisDB := dbManager.Redis()
	if redisDB == nil {
		return nil, errors.New("session store connection is required")
	}

	accounts := repository.NewGormAccountRepository(gormDB.DB())
	sessions := NewSessionManager(redisDB, cfg.Session, cfg.Server.PublicURL)

	return NewServiceWithStores(accounts, sessions, cfg), nil
}

// NewServiceWithStores wires the pipeline against explicit stores; used by
// tests and by embedders that manage their own connections.
func NewServiceWithStores(accounts repository.AccountRepository, sessions *SessionManager, cfg Config) *Service {
	return &Service{
		cfg:        cfg,
		accounts:   accounts,
		sessions:   sessions,
		reconciler: NewReconciler(accounts),
		binder:     NewBinder(accounts, sessions, cfg.Groups),
		logger:     slogging.Get(),
	}
}

// Login runs the full pipeline for one attribute bag. ErrMissingPrincipal
// means the request carries no federated identity and should proceed
// unauthenticated; any other error aborts the login attempt with no
// session issued and no partial account state bound.
func (s *Service) Login(ctx context.Context, attrs map[string]string) (*LoginResult, error) {
	principal, err := ExtractPrincipal(attrs, s.cfg.Attributes)
	if err != nil {
		loginOutcomes.WithLabelValues(outcomeNoSubject).Inc()
		return nil, err
	}

	account, existing, err := s.reconciler.Reconcile(ctx, principal)
	if err != nil {
		loginOutcomes.WithLabelValues(outcomeError).Inc()
		return nil, err
	}
	if !existing {
		accountsCreated.Inc()
	}

	now := time.Now()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		// Best-effort; a stale last_login never blocks a login.
		s.logger.Warn("Failed to record last login for %s: %v", account.Username, err)
	} else {
		account.LastLogin = &now
	}

	session, err := s.binder.Bind(ctx, account, principal)
	if err != nil {
		loginOutcomes.WithLabelValues(outcomeError).Inc()
		return nil, fmt.Errorf("failed to bind session for %s: %w", account.Username, err)
	}

	loginOutcomes.WithLabelValues(outcomeSuccess).Inc()
	s.logger.Debug("Federated login bound: username=%s existing=%t session=%s",
		account.Username, existing, session.ID)

	return &LoginResult{
		Account:  account,
		Session:  session,
		Existing: existing,
	}, nil
}

// Sessions returns the session manager
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the immutable service configuration
func (s *Service) Config() Config {
	return s.cfg
}

// GetAccount retrieves an account by canonical username
func (s *Service) GetAccount(ctx context.Context, username string) (*repository.Account, error) {
	return s.accounts.GetByUsername(ctx, CanonicalUsername(username))
}

// GetGroups returns an account's current group memberships
func (s *Service) GetGroups(ctx context.Context, accountID string) ([]string, error) {
	return s.accounts.ListGroups(ctx, accountID)
}
