package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/agure1996/cinab-website/internal/order"
)

func placedOrder() *order.Order {
	return &order.Order{
		ID:          "o1",
		CartID:      "cart-1",
		UserID:      "u1",
		Status:      order.StatusPending,
		TotalAmount: decimal.RequireFromString("24.50"),
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []order.Item{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("4.50")},
		},
	}
}

func TestBuildOrderPlacedEnvelope(t *testing.T) {
	env := BuildOrderPlacedEnvelope(placedOrder(), 7, EnvelopeMetadata{CausationID: "cause-1"})

	require.NoError(t, env.Validate(orderPlacedEventName, orderPlacedEventVersion))
	require.Equal(t, "o1", env.PartitionKey)
	require.Equal(t, int64(7), *env.Sequence)
	require.NotEmpty(t, env.EventID)
	require.NotEmpty(t, env.CorrelationID) // generated when absent
	require.Equal(t, "cause-1", env.CausationID)
	require.Len(t, env.Payload.Items, 2)
	require.Equal(t, "pending", env.Payload.Status)
	require.True(t, env.Payload.TotalAmount.Equal(decimal.RequireFromString("24.50")))
}

func TestEnvelope_Validate(t *testing.T) {
	env := BuildOrderPlacedEnvelope(placedOrder(), 1, EnvelopeMetadata{})

	require.Error(t, env.Validate("SomethingElse", orderPlacedEventVersion))
	require.Error(t, env.Validate(orderPlacedEventName, 99))

	env.PartitionKey = ""
	require.Error(t, env.Validate(orderPlacedEventName, orderPlacedEventVersion))
}

type statusUpdaterMock struct {
	orderID string
	status  order.Status
	err     error
}

func (m *statusUpdaterMock) UpdateStatus(_ context.Context, orderID string, status order.Status) error {
	m.orderID = orderID
	m.status = status
	return m.err
}

func TestHandleOrderPlaced(t *testing.T) {
	env := BuildOrderPlacedEnvelope(placedOrder(), 3, EnvelopeMetadata{})
	body, err := json.Marshal(env)
	require.NoError(t, err)

	updater := &statusUpdaterMock{}
	logger := log.New(&bytes.Buffer{}, "", 0)

	require.NoError(t, handleOrderPlaced(context.Background(), updater, body, logger))
	require.Equal(t, "o1", updater.orderID)
	require.Equal(t, order.StatusProcessing, updater.status)
}

func TestHandleOrderPlaced_BadPayload(t *testing.T) {
	updater := &statusUpdaterMock{}
	logger := log.New(&bytes.Buffer{}, "", 0)

	err := handleOrderPlaced(context.Background(), updater, []byte(`{not json`), logger)
	require.Error(t, err)
	require.Empty(t, updater.orderID)
}
