package echoapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/permission"
	"github.com/trezcool/challan/core/session"
	"github.com/trezcool/challan/core/user"
)

const contextUserKey = "user"

var nowFunc = time.Now // mockable

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// authMiddleware forwards the caller's token to the backend and loads their profile.
// Expired JWTs are rejected without a backend call.
func authMiddleware(users *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			token := bearerToken(ctx.Request())
			if token == "" {
				return errUnauthorized
			}
			if session.TokenExpired(token, nowFunc()) {
				return errSessionExpired
			}

			reqCtx := core.ContextWithToken(ctx.Request().Context(), token)
			usr, err := users.Profile(reqCtx)
			if err != nil {
				if core.IsUnauthorized(err) {
					return errSessionExpired
				}
				return errors.Wrap(err, "fetching profile")
			}
			if !usr.HasRole(user.AllRoles...) {
				return errHttpForbidden
			}

			ctx.SetRequest(ctx.Request().WithContext(reqCtx))
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

func contextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

type authApi struct {
	users       *user.Service
	campuses    *campus.Service
	permissions *permission.Service
	logger      core.Logger
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, users *user.Service, campuses *campus.Service, permissions *permission.Service, logger core.Logger) {
	api := authApi{users: users, campuses: campuses, permissions: permissions, logger: logger}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
	ag.POST("/logout", api.logout, auth)
	ag.GET("/me", api.me, auth)
}

type (
	LoginResponse struct {
		Token    string    `json:"token"`
		User     user.User `json:"user"`
		HomePath string    `json:"homePath"`
	}

	MeResponse struct {
		User                user.User      `json:"user"`
		Campus              *campus.Campus `json:"campus,omitempty"`
		HomePath            string         `json:"homePath"`
		HasActivePermission bool           `json:"hasActivePermission"`
	}
)

func (api *authApi) login(ctx echo.Context) error {
	var creds user.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	sess, err := api.users.Login(ctx.Request().Context(), creds)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials || core.IsUnauthorized(err) {
			return core.NewValidationError(user.ErrInvalidCredentials)
		}
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: sess.Token, User: sess.User, HomePath: sess.User.HomePath()})
}

// logout only acknowledges: tokens are owned by the backend and forgotten by the client.
func (api *authApi) logout(ctx echo.Context) error {
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()
	res := MeResponse{User: usr, HomePath: usr.HomePath()}

	if usr.CampusID != "" {
		if cmp, err := api.campuses.Get(reqCtx, usr.CampusID); err == nil {
			res.Campus = &cmp
		} else if api.logger != nil {
			api.logger.Warn(fmt.Sprintf("fetching campus %s: %v", usr.CampusID, err), err, usr)
		}
	}

	if usr.IsAccountant() {
		if res.HasActivePermission, err = api.permissions.HasActive(reqCtx); err != nil {
			return errors.Wrap(err, "fetching edit permission")
		}
	}
	return ctx.JSON(http.StatusOK, res)
}
