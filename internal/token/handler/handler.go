package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"qrpass/internal/platform/config"
	"qrpass/internal/platform/middleware"
	"qrpass/internal/token/models"
	dErrors "qrpass/pkg/domain-errors"
	"qrpass/pkg/platform/httputil"
	"qrpass/pkg/platform/middleware/metadata"
	"qrpass/pkg/requestcontext"
)

// Service defines the token operations exposed over HTTP.
type Service interface {
	Issue(ctx context.Context, req models.IssueRequest) (*models.IssueResult, error)
	Resolve(ctx context.Context, id, rawQuery string) (*models.Resolution, error)
	Check(ctx context.Context, id string) (*models.CertificateCheck, error)
}

// Config carries the transport-level settings of the token endpoints.
type Config struct {
	// PublicHost overrides the request Host in issued URLs when set.
	PublicHost string
	// HomeURL is where GET / redirects.
	HomeURL   string
	Operators config.Operators
}

// Handler wires token endpoints to the token service.
type Handler struct {
	service Service
	cfg     Config
	logger  *slog.Logger
}

// New constructs a token handler with its dependencies.
func New(service Service, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		logger:  logger,
	}
}

// Register mounts token endpoints on the router. Issuance routes require
// operator credentials.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleHome)
	r.Get("/verify/{id}", h.HandleVerify)
	r.Get("/api/cert/check/{id}", h.HandleCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator(h.cfg.Operators, h.logger))
		r.Post("/qr-gen", h.HandleIssue)
		r.Get("/qr-gen/profile", h.HandleProfile)
	})
}

// HandleIssue handles POST /qr-gen.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	host := h.cfg.PublicHost
	if host == "" {
		host = r.Host
	}

	result, err := h.service.Issue(ctx, models.IssueRequest{
		Fields:     req.Fields(),
		TTLSeconds: req.Expire,
		Host:       host,
		Locale:     req.Lang,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "token issuance failed",
			"request_id", requestID,
			"operator", requestcontext.Operator(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token issuance completed",
		"request_id", requestID,
		"operator", requestcontext.Operator(ctx),
		"token_id", result.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromIssueResult(result))
}

// HandleProfile handles GET /qr-gen/profile: the identity provisioned for the
// authenticated operator, used to prefill the issuance form.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	op, ok := h.cfg.Operators.Lookup(requestcontext.Operator(ctx))
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "operator credentials required"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ProfileResponse{Username: op.Username, Identity: op.Identity})
}

// HandleVerify handles GET /verify/{id}.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	res, err := h.service.Resolve(ctx, id, r.URL.RawQuery)
	if err != nil {
		h.logger.ErrorContext(ctx, "token resolution failed",
			"request_id", requestID,
			"token_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	client := metadata.DescribeClient(r.UserAgent())
	h.logger.InfoContext(ctx, "verification requested",
		"request_id", requestID,
		"token_id", id,
		"outcome", res.Outcome,
		"client_ip", requestcontext.ClientIP(ctx),
		"browser", client.Browser,
		"os", client.OS,
		"mobile", client.Mobile,
	)

	if res.Outcome == models.OutcomeRedirect {
		http.Redirect(w, r, res.RedirectURL, http.StatusFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{Render: RenderVerification, ID: res.ID})
}

// HandleCheck handles GET /api/cert/check/{id}. Unknown ids answer 200 {}.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	cert, err := h.service.Check(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate check failed",
			"request_id", requestcontext.RequestID(ctx),
			"token_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

// HandleHome handles GET /.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.cfg.HomeURL, http.StatusFound)
}
