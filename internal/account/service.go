package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
)

var (
	ErrForbidden          = errors.New("identity is not allowed to access this account")
	ErrInvalidProfileKind = errors.New("profile kind must be customer or business_owner")
	ErrMissingIdentity    = errors.New("identity uid is required")
)

type SignInRequest struct {
	Kind         ProfileKind
	BusinessName string
	FirstName    string
	LastName     string
	Phone        string
}

// Session is the resolved view of a signed-in identity.
type Session struct {
	Profile     *Profile `json:"profile"`
	Account     *Account `json:"account,omitempty"`
	Provisioned bool     `json:"provisioned"`
}

type AccountPatch struct {
	Name       *string
	LegalName  *string
	Email      *string
	Phone      *string
	Address1   *string
	Address2   *string
	City       *string
	State      *string
	PostalCode *string
	County     *string
	Country    *string
}

type Service interface {
	SignIn(ctx context.Context, identity auth.Identity, req SignInRequest) (*Session, error)
	CurrentSession(ctx context.Context, uid string) (*Session, error)
	// Authorize returns the caller's role on accountID, or ErrForbidden.
	Authorize(ctx context.Context, uid string, accountID uuid.UUID) (Role, error)

	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdateAccount(ctx context.Context, caller Role, id uuid.UUID, patch AccountPatch) (*Account, error)

	ListUsers(ctx context.Context, accountID uuid.UUID) ([]User, error)
	AddUser(ctx context.Context, caller Role, user *User) (*User, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) Service {
	return &service{repo: repo, publisher: publisher}
}

func (s *service) SignIn(ctx context.Context, identity auth.Identity, req SignInRequest) (*Session, error) {
	if identity.UID == "" {
		return nil, ErrMissingIdentity
	}

	profile, err := s.repo.GetProfile(ctx, identity.UID)
	if err == nil {
		return s.sessionFor(ctx, profile, false)
	}
	if !errors.Is(err, ErrProfileNotFound) {
		log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to load profile on sign-in")
		return nil, fmt.Errorf("service: failed to load profile: %w", err)
	}

	// Accounts created by the old client are keyed by the owner's uid and have no profile.
	legacy, err := s.repo.GetAccountByLegacyUID(ctx, identity.UID)
	switch {
	case err == nil:
		return s.adoptLegacyAccount(ctx, identity, legacy)
	case !errors.Is(err, ErrAccountNotFound):
		log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to look up legacy account")
		return nil, fmt.Errorf("service: failed to look up legacy account: %w", err)
	}

	// Invitations are matched by email, so the provider must have verified it.
	if identity.Email != "" && identity.EmailVerified {
		invited, err := s.repo.FindInvitedUserByEmail(ctx, identity.Email)
		switch {
		case err == nil:
			return s.claimInvitation(ctx, identity, invited)
		case !errors.Is(err, ErrUserNotFound):
			log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to look up invitation")
			return nil, fmt.Errorf("service: failed to look up invitation: %w", err)
		}
	}

	switch req.Kind {
	case KindCustomer:
		return s.provisionCustomer(ctx, identity)
	case KindBusinessOwner:
		return s.provisionOwner(ctx, identity, req)
	default:
		log.Warn().Str("uid", identity.UID).Stringer("kind", req.Kind).Msg("service: invalid profile kind on first sign-in")
		return nil, ErrInvalidProfileKind
	}
}

func (s *service) sessionFor(ctx context.Context, profile *Profile, provisioned bool) (*Session, error) {
	session := &Session{Profile: profile, Provisioned: provisioned}
	if profile.PrimaryAccountID == nil {
		return session, nil
	}

	acct, err := s.repo.GetAccount(ctx, *profile.PrimaryAccountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			log.Warn().Str("uid", profile.ID).Stringer("account_id", *profile.PrimaryAccountID).Msg("service: profile points at a missing account")
			return session, nil
		}
		return nil, fmt.Errorf("service: failed to load primary account: %w", err)
	}
	session.Account = acct
	return session, nil
}

func (s *service) provisionCustomer(ctx context.Context, identity auth.Identity) (*Session, error) {
	now := time.Now().UTC()
	profile := &Profile{ID: identity.UID, Kind: KindCustomer, CreatedAt: now, UpdatedAt: now}

	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to store customer profile")
		return nil, fmt.Errorf("service: failed to store customer profile: %w", err)
	}

	log.Info().Str("uid", identity.UID).Msg("service: customer profile created")
	return &Session{Profile: profile, Provisioned: true}, nil
}

func businessName(identity auth.Identity, req SignInRequest) string {
	if name := strings.TrimSpace(req.BusinessName); name != "" {
		return name
	}
	if identity.DisplayName != "" {
		return identity.DisplayName + "'s Truck"
	}
	if identity.Email != "" {
		return identity.Email
	}
	return "My Food Truck"
}

func (s *service) provisionOwner(ctx context.Context, identity auth.Identity, req SignInRequest) (*Session, error) {
	now := time.Now().UTC()

	accountID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate account id: %w", err)
	}
	userID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user id: %w", err)
	}

	acct := &Account{
		ID:                 accountID,
		Name:               businessName(identity, req),
		Email:              identity.Email,
		Phone:              req.Phone,
		SubscriptionTier:   TierMVP,
		SubscriptionStatus: SubscriptionTrial,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	firstName := req.FirstName
	if firstName == "" {
		firstName = identity.DisplayName
	}
	owner := &User{
		ID:            userID,
		AccountID:     accountID,
		Role:          RoleOwner,
		Status:        UserActive,
		Email:         identity.Email,
		FirstName:     firstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		IsEmployee:    true,
		AuthProvider:  identity.Provider,
		AuthSubjectID: identity.UID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	profile := &Profile{
		ID:               identity.UID,
		Kind:             KindBusinessOwner,
		PrimaryAccountID: &accountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.ProvisionOwner(ctx, acct, owner, profile); err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to provision business account")
		return nil, fmt.Errorf("service: failed to provision business account: %w", err)
	}

	log.Info().Str("uid", identity.UID).Stringer("account_id", accountID).Msg("service: business account provisioned")
	return &Session{Profile: profile, Account: acct, Provisioned: true}, nil
}

func (s *service) adoptLegacyAccount(ctx context.Context, identity auth.Identity, acct *Account) (*Session, error) {
	now := time.Now().UTC()

	_, err := s.repo.GetUserBySubject(ctx, acct.ID, identity.UID)
	if errors.Is(err, ErrUserNotFound) {
		userID, genErr := uuid.NewV4()
		if genErr != nil {
			return nil, fmt.Errorf("service: failed to generate user id: %w", genErr)
		}
		owner := &User{
			ID:            userID,
			AccountID:     acct.ID,
			Role:          RoleOwner,
			Status:        UserActive,
			Email:         identity.Email,
			FirstName:     identity.DisplayName,
			IsEmployee:    true,
			AuthProvider:  identity.Provider,
			AuthSubjectID: identity.UID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.CreateUser(ctx, owner); err != nil && !errors.Is(err, ErrEmailExists) {
			return nil, fmt.Errorf("service: failed to create owner for legacy account: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("service: failed to look up legacy owner: %w", err)
	}

	profile := &Profile{
		ID:               identity.UID,
		Kind:             KindBusinessOwner,
		PrimaryAccountID: &acct.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Msg("service: failed to backfill profile for legacy account")
		return nil, fmt.Errorf("service: failed to backfill profile: %w", err)
	}

	log.Info().Str("uid", identity.UID).Stringer("account_id", acct.ID).Msg("service: legacy account migrated to profile")
	return &Session{Profile: profile, Account: acct, Provisioned: true}, nil
}

func (s *service) claimInvitation(ctx context.Context, identity auth.Identity, invited *User) (*Session, error) {
	now := time.Now().UTC()
	profile := &Profile{
		ID:               identity.UID,
		Kind:             KindStaff,
		PrimaryAccountID: &invited.AccountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.ClaimInvitation(ctx, invited.ID, identity.UID, profile); err != nil {
		log.Error().Err(err).Str("uid", identity.UID).Stringer("user_id", invited.ID).Msg("service: failed to claim invitation")
		return nil, fmt.Errorf("service: failed to claim invitation: %w", err)
	}

	log.Info().Str("uid", identity.UID).Stringer("account_id", invited.AccountID).Msg("service: staff invitation claimed")
	return s.sessionFor(ctx, profile, true)
}

func (s *service) CurrentSession(ctx context.Context, uid string) (*Session, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("service: failed to load profile: %w", err)
	}
	return s.sessionFor(ctx, profile, false)
}

func (s *service) Authorize(ctx context.Context, uid string, accountID uuid.UUID) (Role, error) {
	profile, err := s.repo.GetProfile(ctx, uid)
	switch {
	case err == nil:
		if profile.Kind == KindBusinessOwner && profile.PrimaryAccountID != nil && *profile.PrimaryAccountID == accountID {
			return RoleOwner, nil
		}
	case !errors.Is(err, ErrProfileNotFound):
		return "", fmt.Errorf("service: failed to load profile for authorization: %w", err)
	}

	// Staff access always goes through the account user record so disabling it takes effect.
	user, err := s.repo.GetUserBySubject(ctx, accountID, uid)
	switch {
	case err == nil:
		if user.Status == UserActive {
			return user.Role, nil
		}
	case !errors.Is(err, ErrUserNotFound):
		return "", fmt.Errorf("service: failed to load account user for authorization: %w", err)
	}

	log.Warn().Str("uid", uid).Stringer("account_id", accountID).Msg("service: access to account denied")
	return "", ErrForbidden
}

func (s *service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	acct, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error().Err(err).Stringer("account_id", id).Msg("service: failed to get account")
		return nil, fmt.Errorf("service: failed to get account: %w", err)
	}
	return acct, nil
}

func applyPatch(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *service) UpdateAccount(ctx context.Context, caller Role, id uuid.UUID, patch AccountPatch) (*Account, error) {
	if !caller.CanManage() {
		log.Warn().Stringer("account_id", id).Str("role", string(caller)).Msg("service: account update denied for role")
		return nil, ErrForbidden
	}

	acct, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(&acct.Name, patch.Name)
	applyPatch(&acct.LegalName, patch.LegalName)
	applyPatch(&acct.Email, patch.Email)
	applyPatch(&acct.Phone, patch.Phone)
	applyPatch(&acct.Address1, patch.Address1)
	applyPatch(&acct.Address2, patch.Address2)
	applyPatch(&acct.City, patch.City)
	applyPatch(&acct.State, patch.State)
	applyPatch(&acct.PostalCode, patch.PostalCode)
	applyPatch(&acct.County, patch.County)
	applyPatch(&acct.Country, patch.Country)

	if acct.Name == "" {
		return nil, errors.New("service: account name cannot be empty")
	}

	if err := s.repo.UpdateAccount(ctx, acct); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		log.Error().Err(err).Stringer("account_id", id).Msg("service: failed to update account")
		return nil, fmt.Errorf("service: failed to update account: %w", err)
	}

	event := events.Event{Type: events.TypeAccountUpdated, AccountID: acct.ID, OccurredAt: acct.UpdatedAt, Data: acct}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Stringer("account_id", id).Msg("service: failed to publish account update")
	}

	return acct, nil
}

func (s *service) ListUsers(ctx context.Context, accountID uuid.UUID) ([]User, error) {
	users, err := s.repo.ListUsers(ctx, accountID)
	if err != nil {
		log.Error().Err(err).Stringer("account_id", accountID).Msg("service: failed to list account users")
		return nil, fmt.Errorf("service: failed to list account users: %w", err)
	}
	return users, nil
}

// AddUser invites a staff member; the invitation is claimed on their first sign-in.
func (s *service) AddUser(ctx context.Context, caller Role, user *User) (*User, error) {
	if !caller.CanGrant(user.Role) {
		log.Warn().Stringer("account_id", user.AccountID).Str("role", string(caller)).Str("target_role", string(user.Role)).Msg("service: invitation denied for role")
		return nil, ErrForbidden
	}
	if strings.TrimSpace(user.Email) == "" {
		return nil, errors.New("service: user email is required")
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate user id: %w", err)
	}
	now := time.Now().UTC()

	user.ID = id
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Role == "" {
		user.Role = RoleStaff
	}
	user.Status = UserInvited
	user.IsEmployee = true
	user.AuthSubjectID = ""
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, ErrEmailExists
		}
		log.Error().Err(err).Stringer("account_id", user.AccountID).Msg("service: failed to add account user")
		return nil, fmt.Errorf("service: failed to add account user: %w", err)
	}

	log.Info().Stringer("account_id", user.AccountID).Stringer("user_id", user.ID).Str("role", string(user.Role)).Msg("service: account user invited")
	return user, nil
}
