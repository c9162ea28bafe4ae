// Package common provides routines common to all handlers in the patsrv
// webapp.
package common

import (
  "net/http"

  "github.com/gorilla/sessions"
)

const (
  kSessionCookieName = "session-cookie"
  kTenantIdKey = "tenantId"
)

// NewGorillaSession creates a gorilla session for the patsrv app.
func NewGorillaSession(
    sessionStore sessions.Store, r *http.Request) (*sessions.Session, error) {
  return sessionStore.Get(r, kSessionCookieName)
}

// TenantSession represents a session with an optional active tenant.
// Handlers scope every store operation to the active tenant.
type TenantSession struct {
  *sessions.Session
}

// NewTenantSession creates a TenantSession from the request.
func NewTenantSession(
    sessionStore sessions.Store, r *http.Request) (TenantSession, error) {
  gs, err := NewGorillaSession(sessionStore, r)
  if err != nil {
    return TenantSession{}, err
  }
  return TenantSession{Session: gs}, nil
}

// TenantId returns the active tenant id or false if no tenant is active.
func (s TenantSession) TenantId() (int64, bool) {
  result, ok := s.Values[kTenantIdKey].(int64)
  return result, ok
}

// SetTenantId makes tenantId the active tenant.
func (s TenantSession) SetTenantId(tenantId int64) {
  s.Values[kTenantIdKey] = tenantId
}

// ClearTenantId clears the active tenant.
func (s TenantSession) ClearTenantId() {
  delete(s.Values, kTenantIdKey)
}
