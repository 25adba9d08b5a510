package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"workspace-service/internal/apperror"
	"workspace-service/internal/model"
	"workspace-service/internal/store"
	"workspace-service/pkg/logger"
	"workspace-service/pkg/password"
	"workspace-service/prometheus"
)

const msgInvalidCredentials = "Invalid credentials"

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID, tenantID uuid.UUID, role string) (string, time.Time, error)
	Lifetime() time.Duration
}

// RegisterInput is a tenant registration request.
type RegisterInput struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
	AdminName     string `json:"adminName"`
	Plan          string `json:"plan"`
}

// LoginInput is a credential check against one tenant.
type LoginInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenantSubdomain"`
}

// Session is an issued token and its lifetime in seconds.
type Session struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

// SessionUser is the signed-in user as returned to clients.
type SessionUser struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"fullName"`
	Role     model.Role `json:"role"`
	TenantID uuid.UUID  `json:"tenantId"`
}

func newSessionUser(u *model.User) *SessionUser {
	return &SessionUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role, TenantID: u.TenantID}
}

// RegisterResult is returned by a successful registration.
type RegisterResult struct {
	Tenant *model.Tenant `json:"tenant"`
	User   *SessionUser  `json:"user"`
	Session
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User *SessionUser `json:"user"`
	Session
}

// TenantService registers tenants and authenticates their users.
type TenantService struct {
	store  *store.Store
	hasher password.Hasher
	tokens TokenIssuer
	quota  *QuotaEnforcer
	audit  AuditRecorder
	clock  clock.Clock
}

// NewTenantService wires the tenant registry.
func NewTenantService(s *store.Store, hasher password.Hasher, tokens TokenIssuer, quota *QuotaEnforcer, audit AuditRecorder, clk clock.Clock) *TenantService {
	if clk == nil {
		clk = clock.New()
	}
	return &TenantService{store: s, hasher: hasher, tokens: tokens, quota: quota, audit: audit, clock: clk}
}

// Register creates a tenant and its first administrator in one transaction
// and signs the administrator in.
func (s *TenantService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	log := logger.FromContext(ctx)

	in.TenantName = strings.TrimSpace(in.TenantName)
	in.Subdomain = strings.ToLower(strings.TrimSpace(in.Subdomain))
	in.AdminEmail = strings.ToLower(strings.TrimSpace(in.AdminEmail))
	in.AdminName = strings.TrimSpace(in.AdminName)
	in.Plan = strings.TrimSpace(in.Plan)

	if in.TenantName == "" || in.Subdomain == "" || in.AdminEmail == "" || in.AdminPassword == "" || in.AdminName == "" {
		return nil, apperror.New(apperror.Validation, "missing required fields")
	}
	if !subdomainPattern.MatchString(in.Subdomain) {
		return nil, apperror.New(apperror.Validation, "subdomain may only contain lowercase letters, digits and hyphens")
	}
	if !strings.Contains(in.AdminEmail, "@") {
		return nil, apperror.New(apperror.Validation, "invalid email address")
	}

	hash, err := s.hasher.Hash(in.AdminPassword)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Wrap(apperror.Validation, "password is too long", err)
		}
		return nil, err
	}

	plan, limits := model.ResolvePlan(in.Plan)
	now := s.clock.Now().UTC()
	tenant := &model.Tenant{
		ID:          uuid.New(),
		Name:        in.TenantName,
		Subdomain:   in.Subdomain,
		Plan:        plan,
		MaxUsers:    limits.MaxUsers,
		MaxProjects: limits.MaxProjects,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	admin := &model.User{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		Email:        in.AdminEmail,
		PasswordHash: hash,
		FullName:     in.AdminName,
		Role:         model.RoleTenantAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Tx(ctx, "register_tenant", func(q *store.Queries) error {
		taken, err := q.SubdomainTaken(tenant.Subdomain)
		if err != nil {
			return fmt.Errorf("check subdomain: %w", err)
		}
		if taken {
			return errSubdomainTaken
		}
		if err := q.CreateTenant(tenant); err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := s.quota.Enforce(ctx, q, tenant.ID, ResourceUsers); err != nil {
			return err
		}
		if err := q.CreateUser(admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		return s.audit.Record(ctx, q, AuditEntry{
			TenantID:   tenant.ID,
			UserID:     admin.ID,
			Action:     model.ActionRegisterTenant,
			EntityType: model.EntityTenant,
			EntityID:   tenant.ID,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			err = errSubdomainTaken
		}
		if apperror.Is(err, apperror.Conflict) {
			prometheus.RecordRegister("conflict")
			log.Info("Subdomain already taken", zap.String("subdomain", tenant.Subdomain))
		} else {
			prometheus.RecordRegister("error")
		}
		return nil, err
	}

	session, err := s.issue(admin)
	if err != nil {
		return nil, err
	}

	prometheus.RecordRegister("success")
	log.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subdomain", tenant.Subdomain),
		zap.String("plan", string(tenant.Plan)))

	return &RegisterResult{Tenant: tenant, User: newSessionUser(admin), Session: session}, nil
}

var errSubdomainTaken = apperror.New(apperror.Conflict, "subdomain already taken")

// Login checks credentials within one tenant. Every mismatch fails with the
// same message so callers cannot tell which field was wrong.
func (s *TenantService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	log := logger.FromContext(ctx)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	subdomain := strings.ToLower(strings.TrimSpace(in.TenantSubdomain))
	if email == "" || in.Password == "" || subdomain == "" {
		return nil, apperror.New(apperror.Validation, "missing required fields")
	}

	q := s.store.Read(ctx)
	user, err := s.lookupUser(q, subdomain, email)
	if err != nil {
		return nil, err
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !s.hasher.Verify(in.Password, hash) || user == nil {
		prometheus.RecordLogin("invalid_credentials")
		log.Info("Login rejected", zap.String("subdomain", subdomain))
		return nil, apperror.New(apperror.Authentication, msgInvalidCredentials)
	}

	session, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	prometheus.RecordLogin("success")
	log.Info("User logged in",
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("user_id", user.ID.String()))
	return &LoginResult{User: newSessionUser(user), Session: session}, nil
}

// lookupUser returns nil without error when the tenant or user is unknown.
func (s *TenantService) lookupUser(q *store.Queries, subdomain, email string) (*model.User, error) {
	tenant, err := q.TenantBySubdomain(subdomain)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tenant: %w", err)
	}

	user, err := q.UserByEmail(tenant.ID, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *TenantService) issue(u *model.User) (Session, error) {
	token, _, err := s.tokens.Issue(u.ID, u.TenantID, string(u.Role))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresIn: int64(s.tokens.Lifetime().Seconds())}, nil
}
