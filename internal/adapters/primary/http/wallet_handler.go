package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/validation"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// WalletHandler handles HTTP requests for account funds.
type WalletHandler struct {
	walletService ports.WalletService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(
	walletService ports.WalletService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "wallet"),
	}
}

// RegisterRoutes registers the /wallet routes.
func (h *WalletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/balance", h.HandleBalance)
	r.Post("/deposit", h.HandleDeposit)
}

// DepositRequest defines the expected JSON body for a deposit.
// Amount is a decimal string to avoid float rounding on the wire.
type DepositRequest struct {
	Amount string `json:"amount"`
}

// Validate validates the deposit request.
func (r *DepositRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("amount", r.Amount)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// BalanceResponse defines the JSON response for wallet balances.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

// HandleBalance handles GET /wallet/balance.
func (h *WalletHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	balance, err := h.walletService.Balance(r.Context(), claims.AccountID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, BalanceResponse{Balance: balance.String()})
}

// HandleDeposit handles POST /wallet/deposit.
func (h *WalletHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.getClaims(w, r)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[DepositRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("amount", false, "Must be a valid decimal number")
		h.errorHandler.Handle(w, r, v.Errors())
		return
	}

	balance, err := h.walletService.Deposit(r.Context(), claims.AccountID, amount)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("deposit accepted",
		"account_id", claims.AccountID,
		"amount", amount.String(),
	)

	WriteJSON(w, http.StatusOK, BalanceResponse{Balance: balance.String()})
}

// getClaims extracts and validates account claims from the request context.
func (h *WalletHandler) getClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
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
