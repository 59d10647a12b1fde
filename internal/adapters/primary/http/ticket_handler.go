package http

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/validation"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
	"github.com/tickety/marketplace-backend/internal/infrastructure/metrics"
)

const maxListingsPerPage = 100

// TicketHandler handles HTTP requests for resale and redemption.
type TicketHandler struct {
	marketplaceService ports.MarketplaceService
	errorHandler       *ErrorHandler
	logger             *slog.Logger
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(
	marketplaceService ports.MarketplaceService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		marketplaceService: marketplaceService,
		errorHandler:       errorHandler,
		logger:             logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Route("/{ticketID}", func(r chi.Router) {
		r.Post("/resell", h.HandleResellTicket)
		r.Post("/purchase", h.HandleBuyTicket)
		r.Post("/redeem", h.HandleUseTicket)
		r.Get("/listing", h.HandleGetListing)
		r.Delete("/listing", h.HandleCancelListing)
	})
}

// RegisterListingRoutes sets up the routing for browsing resale listings.
func (h *TicketHandler) RegisterListingRoutes(r chi.Router) {
	r.Get("/", h.HandleListListings)
}

// --- Request/Response DTOs ---

// ResellRequest defines the expected JSON body for listing an owned
// ticket for resale. Price is a decimal string.
type ResellRequest struct {
	Price string `json:"price"`
}

// Validate validates the resell request.
func (r *ResellRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("price", r.Price)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// RedeemRequest defines the expected JSON body for redeeming a ticket.
// Signature is a base64-encoded entrance pass; it is optional when the
// ticket owner redeems in person.
type RedeemRequest struct {
	Signature string `json:"signature,omitempty"`
}

// ListingDTO defines the JSON response for resale listings.
type ListingDTO struct {
	ID            int64   `json:"id"`
	TicketID      int64   `json:"ticketId"`
	SellerID      string  `json:"sellerId"`
	Price         string  `json:"price"`
	Active        bool    `json:"active"`
	CreatedAt     string  `json:"createdAt"`
	DeactivatedAt *string `json:"deactivatedAt"`
}

func toListingDTO(listing *domain.Listing) ListingDTO {
	var deactivatedAt *string
	if listing.DeactivatedAt != nil {
		value := listing.DeactivatedAt.Format(time.RFC3339)
		deactivatedAt = &value
	}

	return ListingDTO{
		ID:            listing.ID,
		TicketID:      listing.TicketID,
		SellerID:      listing.SellerID.String(),
		Price:         listing.Price.String(),
		Active:        listing.Active,
		CreatedAt:     listing.CreatedAt.Format(time.RFC3339),
		DeactivatedAt: deactivatedAt,
	}
}

func toListingDTOs(listings []*domain.Listing) []ListingDTO {
	response := make([]ListingDTO, 0, len(listings))
	for _, listing := range listings {
		response = append(response, toListingDTO(listing))
	}
	return response
}

// --- Handlers ---

// HandleResellTicket handles POST /tickets/{ticketID}/resell.
func (h *TicketHandler) HandleResellTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ResellRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	price, err := parseDecimalField("price", req.Price)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	listing, err := h.marketplaceService.ResellTicket(r.Context(), ports.ResellTicketParams{
		TicketID: ticketID,
		SellerID: claims.AccountID,
		Price:    price,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("ticket listed for resale",
		"ticket_id", ticketID,
		"account_id", claims.AccountID,
		"price", price.String(),
	)

	WriteCreated(w, toListingDTO(listing))
}

// HandleBuyTicket handles POST /tickets/{ticketID}/purchase.
func (h *TicketHandler) HandleBuyTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[PurchaseRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	payment, err := parseDecimalField("payment", req.Payment)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.marketplaceService.BuyTicket(r.Context(), ports.BuyTicketParams{
		TicketID: ticketID,
		BuyerID:  claims.AccountID,
		Payment:  payment,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	metrics.TrackSale("resale", payment.InexactFloat64())

	h.logger.Info("resale ticket sold",
		"ticket_id", ticketID,
		"account_id", claims.AccountID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleUseTicket handles POST /tickets/{ticketID}/redeem.
func (h *TicketHandler) HandleUseTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[RedeemRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var signature []byte
	if req.Signature != "" {
		signature, err = base64.StdEncoding.DecodeString(req.Signature)
		if err != nil {
			v := validation.NewValidator()
			v.Custom("signature", false, "Must be base64 encoded")
			h.errorHandler.Handle(w, r, v.Errors())
			return
		}
	}

	ticket, err := h.marketplaceService.UseTicket(r.Context(), ports.UseTicketParams{
		TicketID:  ticketID,
		ActorID:   claims.AccountID,
		Signature: signature,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	metrics.TrackRedemption()

	h.logger.Info("ticket redeemed",
		"ticket_id", ticketID,
		"account_id", claims.AccountID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// HandleGetListing handles GET /tickets/{ticketID}/listing.
func (h *TicketHandler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	listing, err := h.marketplaceService.GetListing(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toListingDTO(listing))
}

// HandleCancelListing handles DELETE /tickets/{ticketID}/listing.
func (h *TicketHandler) HandleCancelListing(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	err = h.marketplaceService.CancelTicketListing(r.Context(), ports.CancelListingParams{
		TicketID: ticketID,
		ActorID:  claims.AccountID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("listing cancelled",
		"ticket_id", ticketID,
		"account_id", claims.AccountID,
	)

	WriteNoContent(w)
}

// HandleListListings handles GET /listings.
func (h *TicketHandler) HandleListListings(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxListingsPerPage)

	listings, err := h.marketplaceService.ListActiveListings(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toListingDTOs(listings))
}

// --- Helper methods ---

// getClaims extracts and validates account claims from the request context.
func (h *TicketHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

// parseTicketID extracts and validates the ticket ID from the URL.
func (h *TicketHandler) parseTicketID(r *http.Request) (int64, error) {
	ticketIDStr := chi.URLParam(r, "ticketID")
	ticketID, err := strconv.ParseInt(ticketIDStr, 10, 64)
	if err != nil || ticketID <= 0 {
		v := validation.NewValidator()
		v.Custom("ticketID", false, "Invalid ticket ID")
		return 0, v.Errors()
	}
	return ticketID, nil
}
