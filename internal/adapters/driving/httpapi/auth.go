package httpapi

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/custodia-labs/clientdesk/internal/logger"
)

// defaultNext is where a successful login lands.
const defaultNext = "/dashboard"

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": s.cfg.Version,
	})
}

// login starts the Google flow. The state and PKCE verifier travel in a
// short-lived signed cookie.
func (s *Server) login(c fiber.Ctx) error {
	challenge, err := s.svc.Auth.BeginLogin()
	if err != nil {
		return err
	}
	token, err := s.sessions.issueLogin(challenge, safeNext(c.Query("next")))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     loginCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(loginTTL.Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect().Status(fiber.StatusFound).To(challenge.URL)
}

// callback completes the Google flow and starts a session.
func (s *Server) callback(c fiber.Ctx) error {
	loginToken := c.Cookies(loginCookie)
	c.ClearCookie(loginCookie)

	if reason := c.Query("error"); reason != "" {
		logger.Warn("google login declined", "reason", reason)
		return s.authFailed(c)
	}

	claims, err := s.sessions.verifyLogin(loginToken, c.Query("state"))
	if err != nil {
		logger.Warn("login callback rejected", "error", err)
		return s.authFailed(c)
	}

	result, err := s.svc.Auth.CompleteLogin(c.Context(), c.Query("code"), claims.Verifier)
	if err != nil {
		logger.Warn("google login failed", "error", err)
		return s.authFailed(c)
	}

	session, err := s.sessions.Issue(result.User.ID)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    session,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   s.cfg.Session.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	next := safeNext(c.Query("next"))
	if next == "" {
		next = claims.Next
	}
	if next == "" {
		next = defaultNext
	}
	target := s.frontendURL(next)
	if !result.CredentialStored {
		target = withQuery(target, "google", "disconnected")
	}
	return c.Redirect().Status(fiber.StatusFound).To(target)
}

func (s *Server) logout(c fiber.Ctx) error {
	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) me(c fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (s *Server) authFailed(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To(s.frontendURL("/login?error=auth_failed"))
}

func (s *Server) frontendURL(path string) string {
	return strings.TrimRight(s.cfg.Server.FrontendURL, "/") + path
}

// safeNext accepts only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return ""
	}
	return next
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
