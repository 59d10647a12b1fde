package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/validation"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
	"github.com/tickety/marketplace-backend/internal/infrastructure/metrics"
)

const maxEventsPerPage = 100

// EventHandler handles HTTP requests for events and the primary market.
type EventHandler struct {
	marketplaceService ports.MarketplaceService
	errorHandler       *ErrorHandler
	logger             *slog.Logger
}

// NewEventHandler creates a new event handler.
func NewEventHandler(
	marketplaceService ports.MarketplaceService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *EventHandler {
	return &EventHandler{
		marketplaceService: marketplaceService,
		errorHandler:       errorHandler,
		logger:             logger.With("handler", "event"),
	}
}

// RegisterRoutes sets up the routing for all event endpoints.
func (h *EventHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListEvents)
	r.Post("/", h.HandleCreateEvent)

	r.Route("/{eventID}", func(r chi.Router) {
		r.Get("/", h.HandleGetEvent)
		r.Get("/tickets", h.HandleEventTickets)
		r.Post("/market", h.HandleOpenMarket)
		r.Delete("/market", h.HandleCancelMarket)
		r.Post("/purchase", h.HandleBuyTicket)
	})
}

// --- Request/Response DTOs ---

// CreateEventRequest defines the expected JSON body for creating an event.
// SaleStart and SaleEnd are Unix timestamps in seconds.
type CreateEventRequest struct {
	Quantity    int32  `json:"quantity"`
	SaleStart   int64  `json:"saleStart"`
	SaleEnd     int64  `json:"saleEnd"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Banner      string `json:"banner"`
	Location    string `json:"location"`
}

// Validate validates the create event request.
func (r *CreateEventRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("name", r.Name).
		MaxLength("name", r.Name, domain.MaxEventNameLength)

	v.MaxLength("description", r.Description, domain.MaxEventDescriptionLength)

	v.Range("quantity", int(r.Quantity), 1, domain.MaxEventQuantity)

	v.Custom("saleEnd", r.SaleEnd > r.SaleStart, "Must be after saleStart")

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// OpenMarketRequest defines the expected JSON body for opening the
// primary market. Price is a decimal string.
type OpenMarketRequest struct {
	Price string `json:"price"`
}

// Validate validates the open market request.
func (r *OpenMarketRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("price", r.Price)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// PurchaseRequest defines the expected JSON body for buying a ticket.
// Payment is a decimal string and must cover the asking price.
type PurchaseRequest struct {
	Payment string `json:"payment"`
}

// Validate validates the purchase request.
func (r *PurchaseRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("payment", r.Payment)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// EventDTO defines the JSON response for events.
type EventDTO struct {
	ID          int64   `json:"id"`
	CreatorID   string  `json:"creatorId"`
	Quantity    int32   `json:"quantity"`
	TicketsSold int32   `json:"ticketsSold"`
	Price       string  `json:"price"`
	SaleStart   string  `json:"saleStart"`
	SaleEnd     string  `json:"saleEnd"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Banner      string  `json:"banner"`
	Location    string  `json:"location"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func toEventDTO(event *domain.Event) EventDTO {
	var updatedAt *string
	if event.UpdatedAt != nil {
		value := event.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return EventDTO{
		ID:          event.ID,
		CreatorID:   event.CreatorID.String(),
		Quantity:    event.Quantity,
		TicketsSold: event.TicketsSold,
		Price:       event.Price.String(),
		SaleStart:   event.SaleStart.Format(time.RFC3339),
		SaleEnd:     event.SaleEnd.Format(time.RFC3339),
		Name:        event.Name,
		Description: event.Description,
		Image:       event.Image,
		Banner:      event.Banner,
		Location:    event.Location,
		Status:      string(event.Status),
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   updatedAt,
	}
}

func toEventDTOs(events []*domain.Event) []EventDTO {
	response := make([]EventDTO, 0, len(events))
	for _, event := range events {
		response = append(response, toEventDTO(event))
	}
	return response
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID        int64   `json:"id"`
	EventID   int64   `json:"eventId"`
	Sold      bool    `json:"sold"`
	Used      bool    `json:"used"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	var updatedAt *string
	if ticket.UpdatedAt != nil {
		value := ticket.UpdatedAt.Format(time.RFC3339)
		updatedAt = &value
	}

	return TicketDTO{
		ID:        ticket.ID,
		EventID:   ticket.EventID,
		Sold:      ticket.Sold,
		Used:      ticket.Used,
		CreatedAt: ticket.CreatedAt.Format(time.RFC3339),
		UpdatedAt: updatedAt,
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, toTicketDTO(ticket))
	}
	return response
}

// --- Handlers ---

// HandleListEvents handles GET /events.
func (h *EventHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxEventsPerPage)

	events, err := h.marketplaceService.ListEvents(r.Context(), ports.ListEventsParams{
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toEventDTOs(events))
}

// HandleCreateEvent handles POST /events.
func (h *EventHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateEventRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event, err := h.marketplaceService.CreateEvent(r.Context(), ports.CreateEventParams{
		CreatorID:   claims.AccountID,
		Quantity:    req.Quantity,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Banner:      req.Banner,
		Location:    req.Location,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("event created",
		"event_id", event.ID,
		"account_id", claims.AccountID,
		"quantity", event.Quantity,
	)

	WriteCreated(w, toEventDTO(event))
}

// HandleGetEvent handles GET /events/{eventID}.
func (h *EventHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.parseEventID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event, err := h.marketplaceService.GetEvent(r.Context(), eventID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleEventTickets handles GET /events/{eventID}/tickets.
func (h *EventHandler) HandleEventTickets(w http.ResponseWriter, r *http.Request) {
	eventID, err := h.parseEventID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets, err := h.marketplaceService.GetEventTickets(r.Context(), eventID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toTicketDTOs(tickets))
}

// HandleOpenMarket handles POST /events/{eventID}/market.
func (h *EventHandler) HandleOpenMarket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	eventID, err := h.parseEventID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[OpenMarketRequest](r)
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

	event, err := h.marketplaceService.CreateTicketMarket(r.Context(), ports.ListMarketParams{
		EventID: eventID,
		ActorID: claims.AccountID,
		Price:   price,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("market opened",
		"event_id", eventID,
		"account_id", claims.AccountID,
		"price", price.String(),
	)

	WriteJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleCancelMarket handles DELETE /events/{eventID}/market.
func (h *EventHandler) HandleCancelMarket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	eventID, err := h.parseEventID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	event, err := h.marketplaceService.CancelTicketMarket(r.Context(), ports.CancelMarketParams{
		EventID: eventID,
		ActorID: claims.AccountID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("market cancelled",
		"event_id", eventID,
		"account_id", claims.AccountID,
	)

	WriteJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleBuyTicket handles POST /events/{eventID}/purchase.
func (h *EventHandler) HandleBuyTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	eventID, err := h.parseEventID(r)
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

	ticket, err := h.marketplaceService.BuyEventTicket(r.Context(), ports.BuyEventTicketParams{
		EventID: eventID,
		BuyerID: claims.AccountID,
		Payment: payment,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	metrics.TrackSale("primary", payment.InexactFloat64())

	h.logger.Info("primary ticket sold",
		"event_id", eventID,
		"ticket_id", ticket.ID,
		"account_id", claims.AccountID,
	)

	WriteJSON(w, http.StatusOK, toTicketDTO(ticket))
}

// --- Helper methods ---

// getClaims extracts and validates account claims from the request context.
func (h *EventHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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

// parseEventID extracts and validates the event ID from the URL.
func (h *EventHandler) parseEventID(r *http.Request) (int64, error) {
	eventIDStr := chi.URLParam(r, "eventID")
	eventID, err := strconv.ParseInt(eventIDStr, 10, 64)
	if err != nil || eventID <= 0 {
		v := validation.NewValidator()
		v.Custom("eventID", false, "Invalid event ID")
		return 0, v.Errors()
	}
	return eventID, nil
}

// parseDecimalField parses a decimal string from a request body field.
func parseDecimalField(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		v := validation.NewValidator()
		v.Custom(field, false, "Must be a valid decimal number")
		return decimal.Zero, v.Errors()
	}
	return d, nil
}
