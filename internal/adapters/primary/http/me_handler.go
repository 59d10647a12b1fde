package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/validation"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// MeHandler handles HTTP requests for the authenticated account.
type MeHandler struct {
	authService        ports.AuthService
	marketplaceService ports.MarketplaceService
	errorHandler       *ErrorHandler
	logger             *slog.Logger
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(
	authService ports.AuthService,
	marketplaceService ports.MarketplaceService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		authService:        authService,
		marketplaceService: marketplaceService,
		errorHandler:       errorHandler,
		logger:             logger.With("handler", "me"),
	}
}

// RegisterRoutes registers the /me routes.
func (h *MeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetAccount)
	r.Put("/entrance-key", h.HandleSetEntranceKey)
	r.Get("/events", h.HandleMyEvents)
	r.Get("/tickets", h.HandleMyTickets)
}

// EntranceKeyRequest defines the expected JSON body for registering an
// entrance verification key. Key is a base64-encoded Ed25519 public key.
type EntranceKeyRequest struct {
	Key string `json:"key"`
}

// Validate validates the entrance key request.
func (r *EntranceKeyRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("key", r.Key)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// HandleGetAccount handles GET /me.
func (h *MeHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	account, err := h.authService.GetAccount(r.Context(), claims.AccountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toAccountDTO(account))
}

// HandleSetEntranceKey handles PUT /me/entrance-key.
func (h *MeHandler) HandleSetEntranceKey(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[EntranceKeyRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	key, err := base64.StdEncoding.DecodeString(req.Key)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("key", false, "Must be base64 encoded")
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	if err := h.authService.RegisterEntranceKey(r.Context(), claims.AccountID, key); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("entrance key registered", "account_id", claims.AccountID)

	WriteNoContent(w)
}

// HandleMyEvents handles GET /me/events.
func (h *MeHandler) HandleMyEvents(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	events, err := h.marketplaceService.GetMyEvents(r.Context(), claims.AccountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toEventDTOs(events))
}

// HandleMyTickets handles GET /me/tickets.
func (h *MeHandler) HandleMyTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	tickets, err := h.marketplaceService.GetMyTickets(r.Context(), claims.AccountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toTicketDTOs(tickets))
}

// getClaims extracts and validates account claims from the request context.
func (h *MeHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return claims, true
}
