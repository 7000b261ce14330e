package account

import (
	"time"

	"github.com/gofrs/uuid"
)

type SubscriptionTier string

const (
	TierMVP    SubscriptionTier = "mvp"
	TierGrowth SubscriptionTier = "growth"
	TierPro    SubscriptionTier = "pro"
	TierCustom SubscriptionTier = "custom"
)

type SubscriptionStatus string

const (
	SubscriptionTrial    SubscriptionStatus = "trial"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

type Account struct {
	ID                  uuid.UUID          `json:"id"`
	Name                string             `json:"name"`
	LegalName           string             `json:"legal_name,omitempty"`
	Email               string             `json:"email,omitempty"`
	Phone               string             `json:"phone,omitempty"`
	Address1            string             `json:"address1,omitempty"`
	Address2            string             `json:"address2,omitempty"`
	City                string             `json:"city,omitempty"`
	State               string             `json:"state,omitempty"`
	PostalCode          string             `json:"postal_code,omitempty"`
	County              string             `json:"county,omitempty"`
	Country             string             `json:"country,omitempty"`
	SubscriptionTier    SubscriptionTier   `json:"subscription_tier"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status"`
	SubscriptionStartAt *time.Time         `json:"subscription_start_at,omitempty"`
	SubscriptionEndAt   *time.Time         `json:"subscription_end_at,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// CanManage reports whether the role may change account settings and invite users.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleManager || r == RoleAdmin
}

// CanGrant reports whether the role may invite someone with target. Only owners
// hand out owner or admin.
func (r Role) CanGrant(target Role) bool {
	switch {
	case r == RoleOwner:
		return true
	case !r.CanManage():
		return false
	default:
		return target == RoleManager || target == RoleStaff || target == ""
	}
}

type UserStatus string

const (
	UserInvited  UserStatus = "invited"
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

// User is a staff or owner record scoped under an account.
type User struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     uuid.UUID  `json:"account_id"`
	Role          Role       `json:"role"`
	Status        UserStatus `json:"status"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	IsEmployee    bool       `json:"is_employee"`
	AuthProvider  string     `json:"auth_provider,omitempty"`
	AuthSubjectID string     `json:"auth_subject_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ProfileKind string

const (
	KindCustomer      ProfileKind = "customer"
	KindBusinessOwner ProfileKind = "business_owner"
	KindStaff         ProfileKind = "staff"
)

func (k ProfileKind) String() string {
	return string(k)
}

// Profile maps an authenticated identity to its kind and primary account.
type Profile struct {
	ID               string      `json:"id"`
	Kind             ProfileKind `json:"kind"`
	PrimaryAccountID *uuid.UUID  `json:"primary_account_id,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (p *Profile) IsBusiness() bool {
	return p.Kind == KindBusinessOwner || p.Kind == KindStaff
}
