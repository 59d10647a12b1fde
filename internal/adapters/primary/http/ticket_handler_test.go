package http

import (
	"context"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResaleFlow(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	creatorToken := registerAndLogin(t, stack)
	sellerToken := registerAndLogin(t, stack)
	buyerToken := registerAndLogin(t, stack)

	sellerClaims, err := stack.tokenManager.ValidateToken(sellerToken)
	require.NoError(t, err)
	buyerClaims, err := stack.tokenManager.ValidateToken(buyerToken)
	require.NoError(t, err)

	_, err = stack.walletService.Deposit(ctx, sellerClaims.AccountID, decimal.NewFromInt(100))
	require.NoError(t, err)

	event := createListedEvent(t, stack, creatorToken, "10")

	recorder := doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/events/%d/purchase", event.ID), sellerToken, map[string]string{
		"payment": "10",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var ticket TicketDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ticket))

	ticketPath := fmt.Sprintf("/tickets/%d", ticket.ID)

	// Without custody approval the marketplace cannot take the ticket
	// into escrow.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/resell", sellerToken, map[string]string{
		"price": "20",
	})
	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPut, "/registry/approvals", sellerToken, map[string]any{
		"operatorId": stack.custodyID.String(),
		"approved":   true,
	})
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/resell", sellerToken, map[string]string{
		"price": "20",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	var listing ListingDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&listing))
	assert.True(t, listing.Active)
	assert.Equal(t, "20", listing.Price)
	assert.Equal(t, sellerClaims.AccountID.String(), listing.SellerID)

	// The listing is publicly visible.
	recorder = doJSON(t, stack, stdhttp.MethodGet, ticketPath+"/listing", "", nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	// The seller cannot buy their own listing.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/purchase", sellerToken, map[string]string{
		"payment": "20",
	})
	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)

	// Neither can the event's creator.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/purchase", creatorToken, map[string]string{
		"payment": "20",
	})
	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)

	// A buyer without funds is rejected.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/purchase", buyerToken, map[string]string{
		"payment": "20",
	})
	assert.Equal(t, stdhttp.StatusPaymentRequired, recorder.Code)

	_, err = stack.walletService.Deposit(ctx, buyerClaims.AccountID, decimal.NewFromInt(50))
	require.NoError(t, err)

	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/purchase", buyerToken, map[string]string{
		"payment": "20",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	// Ownership moved to the buyer.
	recorder = doJSON(t, stack, stdhttp.MethodGet, fmt.Sprintf("/registry/owners/%d", ticket.ID), buyerToken, nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var owner OwnerResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&owner))
	assert.Equal(t, buyerClaims.AccountID.String(), owner.OwnerID)

	// Sale proceeds reached the seller.
	balance, err := stack.walletService.Balance(ctx, sellerClaims.AccountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(110)), "expected 110, got %s", balance)

	// The listing is spent; the ticket is no longer listed.
	recorder = doJSON(t, stack, stdhttp.MethodDelete, ticketPath+"/listing", sellerToken, nil)
	assert.Equal(t, stdhttp.StatusNotFound, recorder.Code)

	// Buying the spent listing reports an inactive listing.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/purchase", buyerToken, map[string]string{
		"payment": "20",
	})
	assert.Equal(t, stdhttp.StatusConflict, recorder.Code)
}

func TestCancelListing_ReturnsTicket(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	creatorToken := registerAndLogin(t, stack)
	sellerToken := registerAndLogin(t, stack)

	sellerClaims, err := stack.tokenManager.ValidateToken(sellerToken)
	require.NoError(t, err)
	_, err = stack.walletService.Deposit(ctx, sellerClaims.AccountID, decimal.NewFromInt(100))
	require.NoError(t, err)

	event := createListedEvent(t, stack, creatorToken, "10")

	recorder := doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/events/%d/purchase", event.ID), sellerToken, map[string]string{
		"payment": "10",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var ticket TicketDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ticket))
	ticketPath := fmt.Sprintf("/tickets/%d", ticket.ID)

	recorder = doJSON(t, stack, stdhttp.MethodPut, "/registry/approvals", sellerToken, map[string]any{
		"operatorId": stack.custodyID.String(),
		"approved":   true,
	})
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/resell", sellerToken, map[string]string{
		"price": "20",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	// While escrowed, the marketplace custody account holds the ticket.
	recorder = doJSON(t, stack, stdhttp.MethodGet, fmt.Sprintf("/registry/owners/%d", ticket.ID), sellerToken, nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var owner OwnerResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&owner))
	assert.Equal(t, stack.custodyID.String(), owner.OwnerID)

	// Only the seller can cancel.
	recorder = doJSON(t, stack, stdhttp.MethodDelete, ticketPath+"/listing", creatorToken, nil)
	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodDelete, ticketPath+"/listing", sellerToken, nil)
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	// The ticket is back with the seller.
	recorder = doJSON(t, stack, stdhttp.MethodGet, fmt.Sprintf("/registry/owners/%d", ticket.ID), sellerToken, nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&owner))
	assert.Equal(t, sellerClaims.AccountID.String(), owner.OwnerID)
}

func TestRedeemTicket(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	creatorToken := registerAndLogin(t, stack)
	ownerToken := registerAndLogin(t, stack)

	ownerClaims, err := stack.tokenManager.ValidateToken(ownerToken)
	require.NoError(t, err)
	_, err = stack.walletService.Deposit(ctx, ownerClaims.AccountID, decimal.NewFromInt(100))
	require.NoError(t, err)

	event := createListedEvent(t, stack, creatorToken, "10")

	// An unsold ticket cannot be redeemed, not even by the creator.
	recorder := doJSON(t, stack, stdhttp.MethodGet, fmt.Sprintf("/events/%d/tickets", event.ID), "", nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var unsold ListResponse[TicketDTO]
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&unsold))
	require.NotEmpty(t, unsold.Data)

	recorder = doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/tickets/%d/redeem", unsold.Data[0].ID), creatorToken, map[string]string{})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/events/%d/purchase", event.ID), ownerToken, map[string]string{
		"payment": "10",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var ticket TicketDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ticket))
	ticketPath := fmt.Sprintf("/tickets/%d", ticket.ID)

	// A stranger cannot redeem without an entrance pass.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/redeem", creatorToken, map[string]string{})
	assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)

	// The owner can redeem in person.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/redeem", ownerToken, map[string]string{})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ticket))
	assert.True(t, ticket.Used)

	// Redemption is one-way.
	recorder = doJSON(t, stack, stdhttp.MethodPost, ticketPath+"/redeem", ownerToken, map[string]string{})
	assert.Equal(t, stdhttp.StatusConflict, recorder.Code)
}

func TestListListings(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	creatorToken := registerAndLogin(t, stack)
	sellerToken := registerAndLogin(t, stack)

	sellerClaims, err := stack.tokenManager.ValidateToken(sellerToken)
	require.NoError(t, err)
	_, err = stack.walletService.Deposit(ctx, sellerClaims.AccountID, decimal.NewFromInt(100))
	require.NoError(t, err)

	event := createListedEvent(t, stack, creatorToken, "10")

	recorder := doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/events/%d/purchase", event.ID), sellerToken, map[string]string{
		"payment": "10",
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var ticket TicketDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&ticket))

	recorder = doJSON(t, stack, stdhttp.MethodPut, "/registry/approvals", sellerToken, map[string]any{
		"operatorId": stack.custodyID.String(),
		"approved":   true,
	})
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodPost, fmt.Sprintf("/tickets/%d/resell", ticket.ID), sellerToken, map[string]string{
		"price": "15",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	recorder = doJSON(t, stack, stdhttp.MethodGet, "/listings", "", nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	var response ListResponse[ListingDTO]
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.NotEmpty(t, response.Data)

	found := false
	for _, l := range response.Data {
		if l.TicketID == ticket.ID {
			found = true
			assert.True(t, l.Active)
		}
	}
	assert.True(t, found, "new listing should appear in active listings")
}
