package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	var got []BookingEventPayload
	bus.Subscribe(func(e *Event) error {
		var p BookingEventPayload
		require.NoError(t, e.Decode(&p))
		got = append(got, p)
		return nil
	}, EventBookingCreated, EventBookingApproved)

	failing := 0
	bus.Subscribe(func(e *Event) error {
		failing++
		return errors.New("subscriber down")
	}, EventBookingCreated)

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: 1, OwnerID: 2}))
	require.NoError(t, bus.PublishJSON(EventBookingApproved, BookingEventPayload{BookingID: 1, Status: "APPROVED"}))
	require.NoError(t, bus.PublishJSON(EventBookingRejected, BookingEventPayload{BookingID: 3}))

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].OwnerID)
	assert.Equal(t, "APPROVED", got[1].Status)
	assert.Equal(t, 1, failing)
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *Bus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}
