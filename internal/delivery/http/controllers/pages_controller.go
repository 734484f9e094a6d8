package controllers

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"pintapoa/internal/delivery/http/middleware"
	"pintapoa/internal/domain"
)

//go:embed templates/*.html
var pageFS embed.FS

// Messages shown on the pages.
const (
	msgMissingCredentials = "Email e senha são obrigatórios"
	msgInvalidCredentials = "Email ou senha inválidos"
	msgUnavailable        = "Serviço indisponível, tente novamente em instantes"
	msgInternal           = "Algo deu errado, tente novamente"
	msgFillRequired       = "Por favor, preencha todos os campos obrigatórios"
)

// StatusOption is one entry of the status selector.
type StatusOption struct {
	Value    domain.EventStatus
	Label    string
	Selected bool
}

var statusLabels = []StatusOption{
	{Value: domain.StatusWaiting, Label: "Aguardando"},
	{Value: domain.StatusActive, Label: "Ativo (Mostrar Localização Atual)"},
	{Value: domain.StatusSeeYouSoon, Label: "Até Breve"},
	{Value: domain.StatusEnded, Label: "Fim do Projeto"},
}

type loginPage struct {
	Email       string
	CallbackURL string
	Error       string
}

type adminPage struct {
	Identity  *domain.Identity
	Status    domain.EventStatus
	Options   []StatusOption
	Latest    *domain.Location
	Locations []*domain.Location
	Form      domain.LocationInput
	Error     string
}

// PagesController serves the login page and the admin console.
type PagesController struct {
	Logger        *slog.Logger
	Auth          domain.AuthService
	Locations     domain.LocationService
	SecureCookies bool
	tmpl          *template.Template
}

// NewPagesController parses the embedded page templates.
func NewPagesController(logger *slog.Logger, auth domain.AuthService, locations domain.LocationService, secureCookies bool) (*PagesController, error) {
	tmpl, err := template.ParseFS(pageFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &PagesController{
		Logger:        logger,
		Auth:          auth,
		Locations:     locations,
		SecureCookies: secureCookies,
		tmpl:          tmpl,
	}, nil
}

func (c *PagesController) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := c.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		c.Logger.ErrorContext(r.Context(), "render page", "template", name, "err", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// LoginPage renders the sign-in form. A visitor who is already signed in goes straight to the callback.
func (c *PagesController) LoginPage(w http.ResponseWriter, r *http.Request) {
	callback := middleware.SafeCallback(r.URL.Query().Get(middleware.CallbackParam), middleware.AdminPathPrefix)
	if token := middleware.SessionToken(r); token != "" {
		if _, err := c.Auth.Verify(r.Context(), token); err == nil {
			http.Redirect(w, r, callback, http.StatusSeeOther)
			return
		}
	}
	c.render(w, r, http.StatusOK, "login.html", loginPage{CallbackURL: callback})
}

// LoginSubmit handles the sign-in form.
func (c *PagesController) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	page := loginPage{
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		CallbackURL: middleware.SafeCallback(r.PostFormValue(middleware.CallbackParam), middleware.AdminPathPrefix),
	}
	password := r.PostFormValue("password")
	if page.Email == "" || password == "" {
		page.Error = msgMissingCredentials
		c.render(w, r, http.StatusBadRequest, "login.html", page)
		return
	}

	_, session, err := c.Auth.SignIn(r.Context(), page.Email, password)
	switch {
	case err == nil:
		setSessionCookie(w, session, c.SecureCookies)
		http.Redirect(w, r, page.CallbackURL, http.StatusSeeOther)
	case errors.Is(err, domain.ErrInvalidCredentials):
		page.Error = msgInvalidCredentials
		c.render(w, r, http.StatusUnauthorized, "login.html", page)
	case errors.Is(err, domain.ErrUnavailable):
		c.Logger.WarnContext(r.Context(), "sign-in unavailable", "err", err)
		page.Error = msgUnavailable
		c.render(w, r, http.StatusServiceUnavailable, "login.html", page)
	default:
		c.Logger.ErrorContext(r.Context(), "sign-in failed", "err", err)
		page.Error = msgInternal
		c.render(w, r, http.StatusInternalServerError, "login.html", page)
	}
}

// Logout signs the visitor out and returns to the login page.
func (c *PagesController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.Auth.SignOut(r.Context(), middleware.SessionToken(r)); err != nil {
		c.Logger.WarnContext(r.Context(), "sign-out failed", "err", err)
	}
	clearSessionCookie(w, c.SecureCookies)
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// AdminPage renders the dashboard. The route guard has already checked the session.
func (c *PagesController) AdminPage(w http.ResponseWriter, r *http.Request) {
	c.renderAdmin(w, r, http.StatusOK, domain.LocationInput{}, "")
}

func (c *PagesController) renderAdmin(w http.ResponseWriter, r *http.Request, status int, form domain.LocationInput, errMsg string) {
	ctx := r.Context()
	identity, _ := middleware.IdentityFromContext(ctx)
	current := c.Locations.GetStatus(ctx)
	locations := c.Locations.ListLocations(ctx)

	options := make([]StatusOption, len(statusLabels))
	for i, o := range statusLabels {
		o.Selected = o.Value == current
		options[i] = o
	}
	page := adminPage{
		Identity:  identity,
		Status:    current,
		Options:   options,
		Locations: locations,
		Form:      form,
		Error:     errMsg,
	}
	if len(locations) > 0 {
		page.Latest = locations[0]
	}
	c.render(w, r, status, "admin.html", page)
}

// AdminSetStatus handles the status form.
func (c *PagesController) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	status, err := domain.ParseEventStatus(r.PostFormValue("status"))
	if err == nil {
		err = c.Locations.SetStatus(r.Context(), status)
	}
	c.afterMutation(w, r, domain.LocationInput{}, err)
}

// AdminCreateLocation handles the new location form.
func (c *PagesController) AdminCreateLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := locationForm(r)
	_, err := c.Locations.CreateLocation(r.Context(), in)
	c.afterMutation(w, r, in, err)
}

// AdminUpdateLocation handles the edit form of one location.
func (c *PagesController) AdminUpdateLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := locationForm(r)
	_, err := c.Locations.UpdateLocation(r.Context(), r.PathValue("id"), in)
	c.afterMutation(w, r, domain.LocationInput{}, err)
}

// AdminDeleteLocation handles the delete button of one location.
func (c *PagesController) AdminDeleteLocation(w http.ResponseWriter, r *http.Request) {
	err := c.Locations.DeleteLocation(r.Context(), r.PathValue("id"))
	c.afterMutation(w, r, domain.LocationInput{}, err)
}

// afterMutation re-reads the dashboard on every outcome. A missing location
// is treated as already gone.
func (c *PagesController) afterMutation(w http.ResponseWriter, r *http.Request, form domain.LocationInput, err error) {
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		http.Redirect(w, r, middleware.AdminPathPrefix, http.StatusSeeOther)
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidStatus):
		c.renderAdmin(w, r, http.StatusBadRequest, form, msgFillRequired)
	case errors.Is(err, domain.ErrUnavailable):
		c.Logger.WarnContext(r.Context(), "admin change not saved", "err", err)
		c.renderAdmin(w, r, http.StatusServiceUnavailable, form, msgUnavailable)
	default:
		c.Logger.ErrorContext(r.Context(), "admin change failed", "err", err)
		c.renderAdmin(w, r, http.StatusInternalServerError, form, msgInternal)
	}
}

func locationForm(r *http.Request) domain.LocationInput {
	return domain.LocationInput{
		Name:        r.PostFormValue("name"),
		Address:     r.PostFormValue("address"),
		Date:        r.PostFormValue("date"),
		Time:        r.PostFormValue("time"),
		ImageURL:    r.PostFormValue("imageUrl"),
		Coordinates: r.PostFormValue("coordinates"),
	}
}
