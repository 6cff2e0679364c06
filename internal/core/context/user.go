// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"strings"
)

// UserContext contains the resolved caller: who acts and for which company.
type UserContext struct {
	UserID      string
	CompanyID   string
	Email       string
	Roles       []string
	Permissions []string
	IsAdmin     bool
}

// HasPermission reports whether the user holds perm. Admins hold every
// permission; "goods_receipt:*" grants every goods_receipt action.
func (u *UserContext) HasPermission(perm string) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin {
		return true
	}
	resource, _, _ := strings.Cut(perm, ":")
	for _, p := range u.Permissions {
		if p == perm || p == resource+":*" {
			return true
		}
	}
	return false
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetCompanyID returns company ID from context or empty string.
func GetCompanyID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.CompanyID
	}
	return ""
}
