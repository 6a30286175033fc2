package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/devbenja/colegio/core/user"
)

// roleMiddleware restricts a route group to users holding one of the
// given roles. It must run after authMiddleware.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
