package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
	"github.com/vasiliy-maslov/foodtruck-service/internal/events"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockRepository) GetAccountByLegacyUID(ctx context.Context, uid string) (*account.Account, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockRepository) UpdateAccount(ctx context.Context, acct *account.Account) error {
	return m.Called(ctx, acct).Error(0)
}

func (m *MockRepository) GetProfile(ctx context.Context, uid string) (*account.Profile, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Profile), args.Error(1)
}

func (m *MockRepository) UpsertProfile(ctx context.Context, profile *account.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockRepository) ProvisionOwner(ctx context.Context, acct *account.Account, owner *account.User, profile *account.Profile) error {
	return m.Called(ctx, acct, owner, profile).Error(0)
}

func (m *MockRepository) ClaimInvitation(ctx context.Context, userID uuid.UUID, uid string, profile *account.Profile) error {
	return m.Called(ctx, userID, uid, profile).Error(0)
}

func (m *MockRepository) CreateUser(ctx context.Context, user *account.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockRepository) ListUsers(ctx context.Context, accountID uuid.UUID) ([]account.User, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.User), args.Error(1)
}

func (m *MockRepository) GetUserBySubject(ctx context.Context, accountID uuid.UUID, uid string) (*account.User, error) {
	args := m.Called(ctx, accountID, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

func (m *MockRepository) FindInvitedUserByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.User), args.Error(1)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestService_SignIn_FirstTimeCustomer(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())
	identity := auth.Identity{UID: "uid-customer", Email: "eater@example.com", EmailVerified: true}

	mockRepo.On("GetProfile", mock.Anything, "uid-customer").Return(nil, account.ErrProfileNotFound).Once()
	mockRepo.On("GetAccountByLegacyUID", mock.Anything, "uid-customer").Return(nil, account.ErrAccountNotFound).Once()
	mockRepo.On("FindInvitedUserByEmail", mock.Anything, "eater@example.com").Return(nil, account.ErrUserNotFound).Once()
	mockRepo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p *account.Profile) bool {
		return p.ID == "uid-customer" && p.Kind == account.KindCustomer && p.PrimaryAccountID == nil
	})).Return(nil).Once()

	session, err := svc.SignIn(context.Background(), identity, account.SignInRequest{Kind: account.KindCustomer})

	require.NoError(t, err)
	assert.True(t, session.Provisioned)
	assert.Equal(t, account.KindCustomer, session.Profile.Kind)
	assert.Nil(t, session.Account)
	mockRepo.AssertNotCalled(t, "ProvisionOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_FirstTimeBusinessOwner(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())
	identity := auth.Identity{UID: "uid-owner", Email: "owner@example.com", EmailVerified: true, DisplayName: "Rosa", Provider: "password"}

	var provisioned *account.Account
	var owner *account.User
	var profile *account.Profile

	mockRepo.On("GetProfile", mock.Anything, "uid-owner").Return(nil, account.ErrProfileNotFound).Once()
	mockRepo.On("GetAccountByLegacyUID", mock.Anything, "uid-owner").Return(nil, account.ErrAccountNotFound).Once()
	mockRepo.On("FindInvitedUserByEmail", mock.Anything, "owner@example.com").Return(nil, account.ErrUserNotFound).Once()
	mockRepo.On("ProvisionOwner", mock.Anything, mock.AnythingOfType("*account.Account"), mock.AnythingOfType("*account.User"), mock.AnythingOfType("*account.Profile")).
		Run(func(args mock.Arguments) {
			provisioned = args.Get(1).(*account.Account)
			owner = args.Get(2).(*account.User)
			profile = args.Get(3).(*account.Profile)
		}).
		Return(nil).Once()

	session, err := svc.SignIn(context.Background(), identity, account.SignInRequest{Kind: account.KindBusinessOwner, BusinessName: "Taco Rosa"})

	require.NoError(t, err)
	require.NotNil(t, provisioned)
	assert.Equal(t, "Taco Rosa", provisioned.Name)
	assert.Equal(t, account.TierMVP, provisioned.SubscriptionTier)
	assert.Equal(t, account.SubscriptionTrial, provisioned.SubscriptionStatus)

	assert.Equal(t, provisioned.ID, owner.AccountID)
	assert.Equal(t, account.RoleOwner, owner.Role)
	assert.Equal(t, account.UserActive, owner.Status)
	assert.Equal(t, "uid-owner", owner.AuthSubjectID)

	assert.Equal(t, account.KindBusinessOwner, profile.Kind)
	require.NotNil(t, profile.PrimaryAccountID)
	assert.Equal(t, provisioned.ID, *profile.PrimaryAccountID)

	assert.True(t, session.Provisioned)
	assert.Equal(t, provisioned, session.Account)
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_ExistingProfileIgnoresRequestedKind(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())

	accountID := uuid.Must(uuid.NewV4())
	existing := &account.Profile{ID: "uid-1", Kind: account.KindBusinessOwner, PrimaryAccountID: &accountID}
	acct := &account.Account{ID: accountID, Name: "Burger Bus"}

	mockRepo.On("GetProfile", mock.Anything, "uid-1").Return(existing, nil).Once()
	mockRepo.On("GetAccount", mock.Anything, accountID).Return(acct, nil).Once()

	session, err := svc.SignIn(context.Background(), auth.Identity{UID: "uid-1"}, account.SignInRequest{Kind: account.KindCustomer})

	require.NoError(t, err)
	assert.False(t, session.Provisioned)
	assert.Empty(t, cmp.Diff(existing, session.Profile))
	assert.Empty(t, cmp.Diff(acct, session.Account))
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_LegacyAccountIsMigrated(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())

	legacy := &account.Account{ID: uuid.Must(uuid.NewV4()), Name: "Old Truck"}
	identity := auth.Identity{UID: "legacy-uid", Email: "old@example.com"}

	mockRepo.On("GetProfile", mock.Anything, "legacy-uid").Return(nil, account.ErrProfileNotFound).Once()
	mockRepo.On("GetAccountByLegacyUID", mock.Anything, "legacy-uid").Return(legacy, nil).Once()
	mockRepo.On("GetUserBySubject", mock.Anything, legacy.ID, "legacy-uid").Return(nil, account.ErrUserNotFound).Once()
	mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *account.User) bool {
		return u.AccountID == legacy.ID && u.Role == account.RoleOwner && u.AuthSubjectID == "legacy-uid"
	})).Return(nil).Once()
	mockRepo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p *account.Profile) bool {
		return p.Kind == account.KindBusinessOwner && p.PrimaryAccountID != nil && *p.PrimaryAccountID == legacy.ID
	})).Return(nil).Once()

	session, err := svc.SignIn(context.Background(), identity, account.SignInRequest{})

	require.NoError(t, err)
	assert.Equal(t, account.KindBusinessOwner, session.Profile.Kind)
	assert.Equal(t, legacy, session.Account)
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_InvitedStaffClaimsInvitation(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())

	accountID := uuid.Must(uuid.NewV4())
	invited := &account.User{ID: uuid.Must(uuid.NewV4()), AccountID: accountID, Email: "cook@example.com", Status: account.UserInvited}
	acct := &account.Account{ID: accountID, Name: "Pho Wheels"}

	mockRepo.On("GetProfile", mock.Anything, "uid-cook").Return(nil, account.ErrProfileNotFound).Once()
	mockRepo.On("GetAccountByLegacyUID", mock.Anything, "uid-cook").Return(nil, account.ErrAccountNotFound).Once()
	mockRepo.On("FindInvitedUserByEmail", mock.Anything, "cook@example.com").Return(invited, nil).Once()
	mockRepo.On("ClaimInvitation", mock.Anything, invited.ID, "uid-cook", mock.MatchedBy(func(p *account.Profile) bool {
		return p.Kind == account.KindStaff && *p.PrimaryAccountID == accountID
	})).Return(nil).Once()
	mockRepo.On("GetAccount", mock.Anything, accountID).Return(acct, nil).Once()

	session, err := svc.SignIn(context.Background(), auth.Identity{UID: "uid-cook", Email: "cook@example.com", EmailVerified: true}, account.SignInRequest{})

	require.NoError(t, err)
	assert.Equal(t, account.KindStaff, session.Profile.Kind)
	assert.Equal(t, acct, session.Account)
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_UnverifiedEmailDoesNotClaimInvitation(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())
	identity := auth.Identity{UID: "uid-stranger", Email: "cook@example.com", Provider: "password"}

	mockRepo.On("GetProfile", mock.Anything, "uid-stranger").Return(nil, account.ErrProfileNotFound).Once()
	mockRepo.On("GetAccountByLegacyUID", mock.Anything, "uid-stranger").Return(nil, account.ErrAccountNotFound).Once()
	mockRepo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(p *account.Profile) bool {
		return p.ID == "uid-stranger" && p.Kind == account.KindCustomer && p.PrimaryAccountID == nil
	})).Return(nil).Once()

	session, err := svc.SignIn(context.Background(), identity, account.SignInRequest{Kind: account.KindCustomer})

	require.NoError(t, err)
	assert.Equal(t, account.KindCustomer, session.Profile.Kind)
	assert.Nil(t, session.Account)
	mockRepo.AssertNotCalled(t, "FindInvitedUserByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "ClaimInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestService_SignIn_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		identity  auth.Identity
		kind      account.ProfileKind
		wantErrIs error
	}{
		{name: "missing_uid", identity: auth.Identity{}, kind: account.KindCustomer, wantErrIs: account.ErrMissingIdentity},
		{name: "staff_self_selected", identity: auth.Identity{UID: "u"}, kind: account.KindStaff, wantErrIs: account.ErrInvalidProfileKind},
		{name: "no_kind", identity: auth.Identity{UID: "u"}, kind: "", wantErrIs: account.ErrInvalidProfileKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := account.NewService(mockRepo, events.NewNoop())

			mockRepo.On("GetProfile", mock.Anything, mock.Anything).Return(nil, account.ErrProfileNotFound).Maybe()
			mockRepo.On("GetAccountByLegacyUID", mock.Anything, mock.Anything).Return(nil, account.ErrAccountNotFound).Maybe()

			session, err := svc.SignIn(context.Background(), tt.identity, account.SignInRequest{Kind: tt.kind})

			require.ErrorIs(t, err, tt.wantErrIs)
			assert.Nil(t, session)
			mockRepo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
			mockRepo.AssertNotCalled(t, "ProvisionOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Authorize(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	otherID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name     string
		profile  *account.Profile
		user     *account.User
		wantRole account.Role
		wantErr  error
	}{
		{
			name:     "owner_of_primary_account",
			profile:  &account.Profile{ID: "u", Kind: account.KindBusinessOwner, PrimaryAccountID: &accountID},
			wantRole: account.RoleOwner,
		},
		{
			name:     "active_member_of_other_account",
			profile:  &account.Profile{ID: "u", Kind: account.KindStaff, PrimaryAccountID: &otherID},
			user:     &account.User{AccountID: accountID, Status: account.UserActive, Role: account.RoleManager},
			wantRole: account.RoleManager,
		},
		{
			name:     "staff_gets_member_role",
			profile:  &account.Profile{ID: "u", Kind: account.KindStaff, PrimaryAccountID: &accountID},
			user:     &account.User{AccountID: accountID, Status: account.UserActive, Role: account.RoleStaff},
			wantRole: account.RoleStaff,
		},
		{
			name:    "customer_without_membership",
			profile: &account.Profile{ID: "u", Kind: account.KindCustomer},
			wantErr: account.ErrForbidden,
		},
		{
			name:    "disabled_member",
			profile: &account.Profile{ID: "u", Kind: account.KindStaff, PrimaryAccountID: &otherID},
			user:    &account.User{AccountID: accountID, Status: account.UserDisabled},
			wantErr: account.ErrForbidden,
		},
		{
			name:    "disabled_member_of_primary_account",
			profile: &account.Profile{ID: "u", Kind: account.KindStaff, PrimaryAccountID: &accountID},
			user:    &account.User{AccountID: accountID, Status: account.UserDisabled, Role: account.RoleManager},
			wantErr: account.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := account.NewService(mockRepo, events.NewNoop())

			mockRepo.On("GetProfile", mock.Anything, "u").Return(tt.profile, nil).Once()
			if tt.user != nil {
				mockRepo.On("GetUserBySubject", mock.Anything, accountID, "u").Return(tt.user, nil).Maybe()
			} else {
				mockRepo.On("GetUserBySubject", mock.Anything, accountID, "u").Return(nil, account.ErrUserNotFound).Maybe()
			}

			role, err := svc.Authorize(context.Background(), "u", accountID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, role)
		})
	}
}

func TestRole_CanGrant(t *testing.T) {
	tests := []struct {
		caller account.Role
		target account.Role
		want   bool
	}{
		{account.RoleOwner, account.RoleOwner, true},
		{account.RoleOwner, account.RoleAdmin, true},
		{account.RoleManager, account.RoleStaff, true},
		{account.RoleManager, account.RoleManager, true},
		{account.RoleManager, "", true},
		{account.RoleManager, account.RoleOwner, false},
		{account.RoleAdmin, account.RoleAdmin, false},
		{account.RoleStaff, account.RoleStaff, false},
		{"", account.RoleStaff, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.caller)+"_grants_"+string(tt.target), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.caller.CanGrant(tt.target))
		})
	}
}

func TestService_UpdateAccount_MergesAndPublishes(t *testing.T) {
	mockRepo := new(MockRepository)
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := account.NewService(mockRepo, publisher)

	id := uuid.Must(uuid.NewV4())
	stored := &account.Account{ID: id, Name: "Old Name", City: "Austin", Phone: "555-0100"}

	mockRepo.On("GetAccount", mock.Anything, id).Return(stored, nil).Once()
	mockRepo.On("UpdateAccount", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil).Once()

	name := "  New Name "
	city := "Dallas"
	updated, err := svc.UpdateAccount(context.Background(), account.RoleOwner, id, account.AccountPatch{Name: &name, City: &city})

	require.NoError(t, err, "publish failures must not fail the update")
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Dallas", updated.City)
	assert.Equal(t, "555-0100", updated.Phone)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, events.TypeAccountUpdated, publisher.events[0].Type)
	assert.Equal(t, id, publisher.events[0].AccountID)
	mockRepo.AssertExpectations(t)
}

func TestService_UpdateAccount_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())
	id := uuid.Must(uuid.NewV4())

	mockRepo.On("GetAccount", mock.Anything, id).Return(nil, account.ErrAccountNotFound).Once()

	_, err := svc.UpdateAccount(context.Background(), account.RoleOwner, id, account.AccountPatch{})
	require.ErrorIs(t, err, account.ErrAccountNotFound)
	mockRepo.AssertNotCalled(t, "UpdateAccount", mock.Anything, mock.Anything)
}

func TestService_UpdateAccount_StaffForbidden(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())

	name := "Hijacked"
	_, err := svc.UpdateAccount(context.Background(), account.RoleStaff, uuid.Must(uuid.NewV4()), account.AccountPatch{Name: &name})

	require.ErrorIs(t, err, account.ErrForbidden)
	mockRepo.AssertNotCalled(t, "GetAccount", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdateAccount", mock.Anything, mock.Anything)
}

func TestService_AddUser_RoleEscalationForbidden(t *testing.T) {
	tests := []struct {
		name   string
		caller account.Role
		target account.Role
	}{
		{"staff_invites_staff", account.RoleStaff, account.RoleStaff},
		{"staff_invites_owner", account.RoleStaff, account.RoleOwner},
		{"manager_invites_owner", account.RoleManager, account.RoleOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			svc := account.NewService(mockRepo, events.NewNoop())

			user, err := svc.AddUser(context.Background(), tt.caller, &account.User{AccountID: uuid.Must(uuid.NewV4()), Email: "x@example.com", Role: tt.target})

			require.ErrorIs(t, err, account.ErrForbidden)
			assert.Nil(t, user)
			mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestService_AddUser_Invites(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())
	accountID := uuid.Must(uuid.NewV4())

	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*account.User")).Return(nil).Once()

	user, err := svc.AddUser(context.Background(), account.RoleManager, &account.User{AccountID: accountID, Email: " Cook@Example.com ", FirstName: "Sam"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, account.RoleStaff, user.Role)
	assert.Equal(t, account.UserInvited, user.Status)
	mockRepo.AssertExpectations(t)
}

func TestService_AddUser_EmailExists(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := account.NewService(mockRepo, events.NewNoop())

	mockRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*account.User")).Return(account.ErrEmailExists).Once()

	user, err := svc.AddUser(context.Background(), account.RoleManager, &account.User{AccountID: uuid.Must(uuid.NewV4()), Email: "dup@example.com"})
	require.ErrorIs(t, err, account.ErrEmailExists)
	assert.Nil(t, user)
}
