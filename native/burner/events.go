package burner

import (
	"strconv"

	"lendcore/core/events"
	"lendcore/crypto"
)

const (
	EventTypeBurnerStarted   = "burner.started"
	EventTypeBurnerBid       = "burner.bid"
	EventTypeBurnerClaimed   = "burner.claimed"
	EventTypeBurnerRestarted = "burner.restarted"
	EventTypeBurnerReclaimed = "burner.reclaimed"
)

func newBidEvent(eventType string, b *Bid, extra map[string]string) events.Event {
	attrs := map[string]string{
		"id":         strconv.FormatUint(b.ID, 10),
		"bidder":     addrAttr(b.Bidder),
		"burnBid":    b.BurnBid.String(),
		"soldAmount": b.SoldAmount.String(),
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return events.New(eventType, attrs)
}

func addrAttr(a crypto.Address) string {
	if a.IsZero() {
		return ""
	}
	return a.String()
}
