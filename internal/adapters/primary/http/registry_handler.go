package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/validation"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// RegistryHandler exposes read and approval operations of the
// ownership registry. Mint and transfer stay internal to the
// marketplace service.
type RegistryHandler struct {
	registryService ports.RegistryService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(
	registryService ports.RegistryService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *RegistryHandler {
	return &RegistryHandler{
		registryService: registryService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "registry"),
	}
}

// RegisterRoutes registers the /registry routes.
func (h *RegistryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/owners/{ticketID}", h.HandleOwnerOf)
	r.Put("/approvals", h.HandleSetApproval)
}

// ApprovalRequest defines the expected JSON body for granting or
// revoking an operator approval.
type ApprovalRequest struct {
	OperatorID string `json:"operatorId"`
	Approved   bool   `json:"approved"`
}

// Validate validates the approval request.
func (r *ApprovalRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("operatorId", r.OperatorID).
		UUID("operatorId", r.OperatorID)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// OwnerResponse defines the JSON response for ownership lookups.
type OwnerResponse struct {
	TicketID int64  `json:"ticketId"`
	OwnerID  string `json:"ownerId"`
}

// HandleOwnerOf handles GET /registry/owners/{ticketID}.
func (h *RegistryHandler) HandleOwnerOf(w http.ResponseWriter, r *http.Request) {
	ticketIDStr := chi.URLParam(r, "ticketID")
	ticketID, err := strconv.ParseInt(ticketIDStr, 10, 64)
	if err != nil || ticketID <= 0 {
		v := validation.NewValidator()
		v.Custom("ticketID", false, "Invalid ticket ID")
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	ownerID, err := h.registryService.OwnerOf(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, OwnerResponse{
		TicketID: ticketID,
		OwnerID:  ownerID.String(),
	})
}

// HandleSetApproval handles PUT /registry/approvals.
func (h *RegistryHandler) HandleSetApproval(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[ApprovalRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		// This shouldn't happen since we validated the UUID format
		h.errorHandler.Handle(w, r, err)
		return
	}

	err = h.registryService.SetApprovalForAll(r.Context(), claims.AccountID, operatorID, req.Approved)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("operator approval updated",
		"account_id", claims.AccountID,
		"operator_id", operatorID,
		"approved", req.Approved,
	)

	WriteNoContent(w)
}

// getClaims extracts and validates account claims from the request context.
func (h *RegistryHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
