package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller resolved by AuthRequired.
type Identity interface {
	UserID() uuid.UUID
	// TenantID is the organization the session is scoped to.
	TenantID() (uuid.UUID, bool)
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID   uuid.UUID
	tenantID uuid.UUID
	roles    []string
}

func (i identity) UserID() uuid.UUID { return i.userID }

func (i identity) TenantID() (uuid.UUID, bool) { return i.tenantID, i.tenantID != uuid.Nil }

func (i identity) Roles() []string { return i.roles }

func (i identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }

func (i identity) IsAuthenticated() bool { return i.userID != uuid.Nil }

// GetIdentity reads the identity AuthRequired stored on c. Outside the
// protected group it returns an unauthenticated identity.
func GetIdentity(c *gin.Context) Identity {
	var id identity
	if v, ok := c.Get(ContextUserIDKey); ok {
		id.userID, _ = v.(uuid.UUID)
	}
	if v, ok := c.Get(ContextRolesKey); ok {
		id.roles, _ = v.([]string)
	}
	if v, ok := c.Get(ContextTenantIDKey); ok {
		id.tenantID, _ = v.(uuid.UUID)
	}
	return id
}

// MustGetIdentity aborts with 401 and returns nil when the caller is anonymous.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return nil
	}
	return id
}

// MustGetTenant aborts with 403 when the session is not scoped to an organization.
func MustGetTenant(c *gin.Context) (Identity, uuid.UUID, bool) {
	id := MustGetIdentity(c)
	if id == nil {
		return nil, uuid.Nil, false
	}
	tenantID, ok := id.TenantID()
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "organization required"})
		return nil, uuid.Nil, false
	}
	return id, tenantID, true
}
