// Package realtime fans domain events out to connected websocket clients.
package realtime

import (
	"context"
	"fmt"
)

type Event string

const (
	EventNewAlert                Event = "newAlert"
	EventPriceUpdated            Event = "priceUpdated"
	EventPriceDropped            Event = "priceDropped"
	EventNewDeal                 Event = "newDeal"
	EventDealUpdated             Event = "dealUpdated"
	EventDealRemoved             Event = "dealRemoved"
	EventNewPriceSubmission      Event = "newPriceSubmission"
	EventPriceSubmissionApproved Event = "priceSubmissionApproved"
	EventPriceSubmissionRejected Event = "priceSubmissionRejected"
	EventNewReview               Event = "newReview"
	EventReviewDeleted           Event = "reviewDeleted"
	EventProductDeleted          Event = "productDeleted"

	eventJoined Event = "joined"
	eventError  Event = "error"
)

// Client-to-server message names.
const (
	clientJoin          = "join"
	clientJoinOwnerRoom = "joinOwnerRoom"
)

// Envelope is the wire shape of every server push.
type Envelope struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// Notifier delivers events to one user, one location's owners, or everyone.
// Delivery is at-most-once; implementations never block the caller on slow
// consumers.
type Notifier interface {
	ToUser(ctx context.Context, userID int64, event Event, data any)
	ToOwner(ctx context.Context, locationID int64, event Event, data any)
	Broadcast(ctx context.Context, event Event, data any)
}

func UserRoom(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}

func OwnerRoom(locationID int64) string {
	return fmt.Sprintf("owner_%d", locationID)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ToUser(context.Context, int64, Event, any)  {}
func (Nop) ToOwner(context.Context, int64, Event, any) {}
func (Nop) Broadcast(context.Context, Event, any)      {}
