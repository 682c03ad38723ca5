package session

import (
	"github.com/labstack/echo/v4"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
)

// Login binds userID to the session, rotating the session token first.
func Login(c echo.Context, userID uint) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	ctx := c.Request().Context()
	if err := manager.RenewToken(ctx); err != nil {
		return err
	}
	manager.Put(ctx, UserIDKey, userID)
	manager.Put(ctx, AuthenticatedKey, true)
	return nil
}

func Logout(c echo.Context) error {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	return manager.Destroy(c.Request().Context())
}

func GetUserID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}
	ctx := c.Request().Context()
	if !manager.GetBool(ctx, AuthenticatedKey) {
		return 0
	}
	return convertToUint(manager.Get(ctx, UserIDKey))
}

func IsAuthenticated(c echo.Context) bool {
	return GetUserID(c) > 0
}

func convertToUint(v any) uint {
	switch n := v.(type) {
	case uint:
		return n
	case int:
		if n > 0 {
			return uint(n)
		}
	case int64:
		if n > 0 {
			return uint(n)
		}
	case uint64:
		return uint(n)
	case float64:
		if n > 0 {
			return uint(n)
		}
	}
	return 0
}
