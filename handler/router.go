package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"folio-api/internal/usecase"
)

const maxBodyBytes = 1 << 20

var (
	corsMethods      = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsAllowHeaders = []string{"Content-Type", "Authorization"}
)

type ContentUseCase interface {
	Create(ctx context.Context, in usecase.CreateInput) (usecase.CreateOutput, error)
	Edit(ctx context.Context, in usecase.EditInput) (usecase.EditOutput, error)
	ListAdmin(ctx context.Context, section string) (usecase.AdminList, error)
	ListPublic(ctx context.Context, section string) (usecase.PublicList, error)
	GetAdmin(ctx context.Context, section, slug string) (usecase.AdminRecord, error)
	GetPublic(ctx context.Context, section, slug string) (any, error)
	RebuildIndex(ctx context.Context, section string) (usecase.RebuildOutput, error)
}

type ContactUseCase interface {
	Submit(ctx context.Context, in usecase.ContactInput) (usecase.ContactOutput, error)
}

type UploadUseCase interface {
	RequestURL(ctx context.Context, in usecase.UploadInput) (usecase.UploadOutput, error)
}

// Deps are the collaborators of the router.
type Deps struct {
	Content ContentUseCase
	Contact ContactUseCase
	Upload  UploadUseCase
	Auth    Authenticator
	Logger  *zap.Logger
	// AllowedOrigin is the CORS origin; "*" allows any.
	AllowedOrigin string
}

type routes struct {
	content ContentUseCase
	contact ContactUseCase
	upload  UploadUseCase
	logger  *zap.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(d Deps) (*chi.Mux, error) {
	if d.Content == nil {
		return nil, errors.New("handler: content use case must not be nil")
	}
	if d.Contact == nil {
		return nil, errors.New("handler: contact use case must not be nil")
	}
	if d.Upload == nil {
		return nil, errors.New("handler: upload use case must not be nil")
	}
	if d.Auth == nil {
		return nil, errors.New("handler: authenticator must not be nil")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origin := d.AllowedOrigin
	if origin == "" {
		origin = "*"
	}
	rt := &routes{content: d.Content, contact: d.Contact, upload: d.Upload, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{origin},
		AllowedMethods:     corsMethods,
		AllowedHeaders:     corsAllowHeaders,
		ExposedHeaders:     []string{headerCorrelationID},
		OptionsPassthrough: true,
		MaxAge:             300,
	}))
	r.Use(corsHeaders(origin))
	r.Use(preflight)

	// Set before Route so subrouters inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, &usecase.Error{Code: usecase.ErrorNotFound, Reason: "no_route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, &usecase.Error{Code: usecase.ErrorMethodNotAllowed, Reason: "method_not_allowed"})
	})

	r.Get("/health", rt.health)
	r.Post("/contact", rt.submitContact)

	r.Route("/public", func(r chi.Router) {
		r.Get("/{section}", rt.listPublic)
		r.Get("/{section}/{slug}", rt.getPublic)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin(d.Auth, logger))
		r.Post("/uploads", rt.requestUpload)
		r.Post("/reindex/{section}", rt.reindex)
		r.Get("/{section}", rt.listAdmin)
		r.Get("/{section}/{slug}", rt.getAdmin)
		r.Post("/{section}/{slug}", rt.create)
		r.Patch("/{section}/{slug}", rt.edit)
	})

	return r, nil
}

func (rt *routes) health(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *routes) submitContact(w http.ResponseWriter, r *http.Request) {
	var in usecase.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	in.SourceIP = sourceIP(r)
	out, err := rt.contact.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (rt *routes) requestUpload(w http.ResponseWriter, r *http.Request) {
	var in usecase.UploadInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	out, err := rt.upload.RequestURL(r.Context(), in)
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) reindex(w http.ResponseWriter, r *http.Request) {
	out, err := rt.content.RebuildIndex(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) listAdmin(w http.ResponseWriter, r *http.Request) {
	out, err := rt.content.ListAdmin(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) listPublic(w http.ResponseWriter, r *http.Request) {
	out, err := rt.content.ListPublic(r.Context(), chi.URLParam(r, "section"))
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) getAdmin(w http.ResponseWriter, r *http.Request) {
	out, err := rt.content.GetAdmin(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) getPublic(w http.ResponseWriter, r *http.Request) {
	out, err := rt.content.GetPublic(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func (rt *routes) create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	out, err := rt.content.Create(r.Context(), usecase.CreateInput{
		Section: chi.URLParam(r, "section"),
		Slug:    chi.URLParam(r, "slug"),
		Body:    body,
		Actor:   identityFrom(r.Context()).Name(),
	})
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusCreated, out)
}

func (rt *routes) edit(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	out, err := rt.content.Edit(r.Context(), usecase.EditInput{
		Section: chi.URLParam(r, "section"),
		Slug:    chi.URLParam(r, "slug"),
		Body:    body,
		Actor:   identityFrom(r.Context()).Name(),
	})
	if err != nil {
		writeError(w, r, rt.logger, err)
		return
	}
	writeData(w, http.StatusOK, out)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &usecase.Error{Code: usecase.ErrorPayloadTooLarge, Reason: "body_too_large", Err: err}
		}
		return nil, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "body_unreadable", Err: err}
	}
	return body, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err}
	}
	return nil
}

// sourceIP prefers the API Gateway identity and falls back to the peer
// address, which RealIP has already resolved from forwarding headers.
func sourceIP(r *http.Request) string {
	if pc, ok := core.GetAPIGatewayContextFromContext(r.Context()); ok && pc.Identity.SourceIP != "" {
		return pc.Identity.SourceIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
