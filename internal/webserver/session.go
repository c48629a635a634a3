package webserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	oprSessionName = "ablewear_opr"

	sessOprID       = "opr_id"
	sessOprUsername = "opr_username"
	sessOprLevel    = "opr_level"
)

// Operator is the admin identity stored in the session cookie.
type Operator struct {
	ID       int64
	Username string
	Level    string
}

// adminSessionMiddleware guards /admin routes. The login and logout
// endpoints stay reachable without a session.
func adminSessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasSuffix(path, "/admin/login") || strings.HasSuffix(path, "/admin/logout") {
				return next(c)
			}
			if _, err := CurrentOperator(c); err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"code": "UNAUTHORIZED",
					"msg":  "operator login required",
				})
			}
			return next(c)
		}
	}
}

// SaveOperatorSession binds the operator to the session cookie.
func SaveOperatorSession(c echo.Context, op Operator) error {
	sess, err := session.Get(oprSessionName, c)
	if err != nil {
		return err
	}
	sess.Options.Path = "/"
	sess.Options.MaxAge = 86400
	sess.Options.HttpOnly = true
	sess.Values[sessOprID] = op.ID
	sess.Values[sessOprUsername] = op.Username
	sess.Values[sessOprLevel] = op.Level
	return sess.Save(c.Request(), c.Response())
}

// ClearOperatorSession logs the operator out.
func ClearOperatorSession(c echo.Context) error {
	sess, err := session.Get(oprSessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(c.Request(), c.Response())
}

// CurrentOperator returns the operator bound to the session, if any.
func CurrentOperator(c echo.Context) (*Operator, error) {
	sess, err := session.Get(oprSessionName, c)
	if err != nil {
		return nil, err
	}
	id, ok := sess.Values[sessOprID].(int64)
	if !ok || id == 0 {
		return nil, echo.ErrUnauthorized
	}
	username, _ := sess.Values[sessOprUsername].(string)
	level, _ := sess.Values[sessOprLevel].(string)
	return &Operator{ID: id, Username: username, Level: level}, nil
}
