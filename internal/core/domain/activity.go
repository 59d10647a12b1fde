package domain

// ActivityType defines the type of real-time marketplace event.
type ActivityType string

const (
	ActivityEventCreated     ActivityType = "EVENT_CREATED"
	ActivityMarketListed     ActivityType = "MARKET_LISTED"
	ActivityMarketCancelled  ActivityType = "MARKET_CANCELLED"
	ActivityTicketSold       ActivityType = "TICKET_SOLD"
	ActivityTicketListed     ActivityType = "TICKET_LISTED"
	ActivityListingCancelled ActivityType = "LISTING_CANCELLED"
	ActivityTicketUsed       ActivityType = "TICKET_USED"
)

// Activity is the payload sent over WebSocket.
type Activity struct {
	Type    ActivityType `json:"type"`
	Payload interface{}  `json:"payload"`
	EventID int64        `json:"eventId"` // Used for routing to event "rooms"
}
