package web

import (
	"errors"
	"io/fs"
	"net/http"
	embedded "secretserver"
	"secretserver/auth/oauth"
	authservice "secretserver/auth/service"
	"secretserver/auth/users"
	"secretserver/internal/config"
	"secretserver/internal/service"
	"secretserver/internal/web/webpath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Server struct {
	auth    *authservice.Service
	google  *oauth.Service
	secrets *service.SecretService
	app     *fiber.App
	cfg     config.Server
	log     *logrus.Entry
}

const (
	userKey         = "user"
	stateCookieName = "oauthstate"
	sessionCookie   = "token"
	stateCookieTTL  = 5 * time.Minute
)

func New(cfg config.Server, authService *authservice.Service, googleService *oauth.Service, secretService *service.SecretService, l *logrus.Logger) (*Server, error) {
	server := Server{
		auth:    authService,
		google:  googleService,
		secrets: secretService,
		cfg:     cfg,
		log:     l.WithField("from", "web"),
	}

	fsFS, err := fs.Sub(embedded.Views, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(fsFS), ".html")
	engine.Reload(cfg.Debug)
	engine.Debug(cfg.Debug)

	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(func(c *fiber.Ctx) error {
		tokenCookie := c.Cookies(sessionCookie)
		user, err := server.auth.Auth(c.Context(), tokenCookie)
		if err != nil {
			server.log.WithError(err).Error("session resolution failed")
		}
		c.Context().SetUserValue(userKey, user)
		return c.Next()
	})
	app.Get(webpath.Home, server.handleHome)
	app.Get(webpath.Login, server.handleLoginGet)
	app.Post(webpath.Login, server.handleLoginPost)
	app.Get(webpath.Register, server.handleRegisterGet)
	app.Post(webpath.Register, server.handleRegisterPost)
	app.Get(webpath.Secrets, server.handleSecrets)
	app.Get(webpath.Submit, server.handleSubmitGet)
	app.Post(webpath.Submit, server.handleSubmitPost)
	app.Get(webpath.AuthGoogle, server.handleGoogleAuth)
	app.Get(webpath.AuthGoogleCallback, server.handleGoogleCallback)
	app.Get(webpath.Logout, server.handleLogout)
	server.app = app
	return &server, nil
}

func (s *Server) Serve() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	if s.cfg.CertFile != "" {
		return s.app.ListenTLS(addr, s.cfg.CertFile, s.cfg.KeyFile)
	}
	return s.app.Listen(addr)
}

func (s *Server) handleHome(ctx *fiber.Ctx) error {
	user, _ := ctx.Context().UserValue(userKey).(users.User)
	return ctx.Render("home", fiber.Map{
		"Title":    "Whisperwall",
		"Path":     webpath.Path(),
		"User":     user,
		"LoggedIn": !user.IsZero(),
	}, "layouts/main")
}

func (s *Server) handleLoginGet(ctx *fiber.Ctx) error {
	return ctx.Render("login", fiber.Map{
		"Title": "Log in",
		"Path":  webpath.Path(),
	}, "layouts/main")
}

func (s *Server) handleLoginPost(ctx *fiber.Ctx) error {
	form := credentialsForm{
		Username: ctx.FormValue("username", ""),
		Password: ctx.FormValue("password", ""),
	}
	if err := form.Validate(); err != nil {
		s.log.WithError(err).Info("login form rejected")
		return ctx.Redirect(webpath.Login)
	}
	user, err := s.auth.Login(ctx.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, authservice.ErrInvalidCredentials) {
			s.log.WithError(err).Error("login failed")
		}
		return ctx.Redirect(webpath.Login)
	}
	if err := s.establishSession(ctx, user.ID); err != nil {
		s.log.WithError(err).Error("cannot establish session")
		return ctx.Redirect(webpath.Login)
	}
	return ctx.Redirect(webpath.Secrets)
}

func (s *Server) handleRegisterGet(ctx *fiber.Ctx) error {
	return ctx.Render("register", fiber.Map{
		"Title": "Register",
		"Path":  webpath.Path(),
	}, "layouts/main")
}

func (s *Server) handleRegisterPost(ctx *fiber.Ctx) error {
	form := credentialsForm{
		Username: ctx.FormValue("username", ""),
		Password: ctx.FormValue("password", ""),
	}
	if err := form.Validate(); err != nil {
		s.log.WithError(err).Info("registration form rejected")
		return ctx.Redirect(webpath.Register)
	}
	user, err := s.auth.SignUp(ctx.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, authservice.ErrUserExists) {
			s.log.WithError(err).Error("registration failed")
		}
		return ctx.Redirect(webpath.Register)
	}
	if err := s.establishSession(ctx, user.ID); err != nil {
		s.log.WithError(err).Error("cannot establish session")
		return ctx.Redirect(webpath.Login)
	}
	return ctx.Redirect(webpath.Secrets)
}

func (s *Server) handleSecrets(ctx *fiber.Ctx) error {
	user, _ := ctx.Context().UserValue(userKey).(users.User)
	secrets, err := s.secrets.List(ctx.Context())
	if err != nil {
		s.log.WithError(err).Error("cannot list secrets")
		return ctx.Redirect(webpath.Home)
	}
	return ctx.Render("secrets", fiber.Map{
		"Title":    "Secrets",
		"Path":     webpath.Path(),
		"User":     user,
		"LoggedIn": !user.IsZero(),
		"Secrets":  secrets,
	}, "layouts/main")
}

func (s *Server) handleSubmitGet(ctx *fiber.Ctx) error {
	user, _ := ctx.Context().UserValue(userKey).(users.User)
	if user.IsZero() {
		return ctx.Redirect(webpath.Login)
	}
	return ctx.Render("submit", fiber.Map{
		"Title":    "Submit a secret",
		"Path":     webpath.Path(),
		"User":     user,
		"LoggedIn": true,
	}, "layouts/main")
}

func (s *Server) handleSubmitPost(ctx *fiber.Ctx) error {
	user, _ := ctx.Context().UserValue(userKey).(users.User)
	if user.IsZero() {
		return ctx.Redirect(webpath.Login)
	}
	form := submitForm{
		Secret: ctx.FormValue("secret", ""),
	}
	if err := form.Validate(); err != nil {
		s.log.WithError(err).Info("submit form rejected")
		return ctx.Redirect(webpath.Submit)
	}
	if err := s.secrets.Submit(ctx.Context(), user.ID, form.Secret); err != nil {
		s.log.WithError(err).Error("cannot store secret")
		return ctx.Redirect(webpath.Submit)
	}
	return ctx.Redirect(webpath.Secrets)
}

func (s *Server) handleGoogleAuth(ctx *fiber.Ctx) error {
	state := uuid.NewString()
	ctx.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     webpath.AuthGoogleCallback,
		Expires:  time.Now().Add(stateCookieTTL),
		HTTPOnly: true,
	})
	return ctx.Redirect(s.google.AuthCodeURL(state))
}

func (s *Server) handleGoogleCallback(ctx *fiber.Ctx) error {
	state := ctx.Query("state")
	pinned := ctx.Cookies(stateCookieName)
	s.clearStateCookie(ctx)
	if state == "" || state != pinned {
		s.log.Info("google callback rejected: state mismatch")
		return ctx.Redirect(webpath.Login)
	}
	if errParam := ctx.Query("error"); errParam != "" {
		s.log.WithField("error", errParam).Info("google callback denied")
		return ctx.Redirect(webpath.Login)
	}
	code := ctx.Query("code")
	if code == "" {
		return ctx.Redirect(webpath.Login)
	}
	user, err := s.google.HandleCallback(ctx.Context(), code)
	if err != nil {
		s.log.WithError(err).Error("google callback failed")
		return ctx.Redirect(webpath.Login)
	}
	if err := s.establishSession(ctx, user.ID); err != nil {
		s.log.WithError(err).Error("cannot establish session")
		return ctx.Redirect(webpath.Login)
	}
	return ctx.Redirect(webpath.Secrets)
}

// clearStateCookie expires the state cookie at the path it was set
// with; ClearCookie would target "/" and leave the original alive.
func (s *Server) clearStateCookie(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     webpath.AuthGoogleCallback,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
}

func (s *Server) handleLogout(ctx *fiber.Ctx) error {
	ctx.ClearCookie(sessionCookie)
	return ctx.Redirect(webpath.Home)
}

func (s *Server) establishSession(ctx *fiber.Ctx, userID uuid.UUID) error {
	cookie, err := s.auth.GenerateJWTCookie(userID, s.cfg.Host)
	if err != nil {
		return err
	}
	ctx.Cookie(cookie)
	return nil
}
