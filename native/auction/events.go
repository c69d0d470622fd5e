package auction

import (
	"strconv"

	"lendcore/core/events"
)

const (
	EventTypeAuctionCreated = "auction.created"
	EventTypeAuctionTaken   = "auction.taken"
)

func newAuctionEvent(eventType string, a *Auction, extra map[string]string) events.Event {
	attrs := map[string]string{
		"id":        formatID(a.ID),
		"owner":     a.Owner.String(),
		"fromToken": a.FromToken,
		"remaining": a.Amount.String(),
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return events.New(eventType, attrs)
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
