package wsgateway

import (
	"testing"
)

func TestConnection_SubscribeUnsubscribe(t *testing.T) {
	conn := &Connection{
		ID:            "conn-1",
		subscriptions: make(map[string]bool),
	}

	conn.Subscribe([]string{"RELIANCE", "TCS"})

	filtered := conn.FilterPrices(map[string]float64{
		"RELIANCE": 2500,
		"TCS":      3600,
		"INFY":     1500,
	})
	if len(filtered) != 2 {
		t.Errorf("Expected 2 filtered prices, got %d", len(filtered))
	}
	if _, ok := filtered["INFY"]; ok {
		t.Error("Expected INFY to be filtered out")
	}

	conn.Unsubscribe([]string{"TCS"})
	filtered = conn.FilterPrices(map[string]float64{"RELIANCE": 2500, "TCS": 3600})
	if len(filtered) != 1 {
		t.Errorf("Expected 1 filtered price, got %d", len(filtered))
	}
}

func TestConnection_NoSubscriptionsReceivesAll(t *testing.T) {
	conn := &Connection{
		ID:            "conn-1",
		subscriptions: make(map[string]bool),
	}

	prices := map[string]float64{"RELIANCE": 2500, "TCS": 3600}
	filtered := conn.FilterPrices(prices)
	if len(filtered) != len(prices) {
		t.Errorf("Expected all %d prices without subscriptions, got %d", len(prices), len(filtered))
	}
}

func TestHub_OnPricesCountsBroadcasts(t *testing.T) {
	hub := NewHub()

	// No connections: broadcast is a no-op but must not panic.
	hub.OnPrices(map[string]float64{"RELIANCE": 2500})
	hub.OnPrices(nil)

	stats := hub.GetStats()
	if stats.UpdatesBroadcast != 1 {
		t.Errorf("Expected 1 broadcast counted, got %d", stats.UpdatesBroadcast)
	}
	if stats.MessagesSent != 0 {
		t.Errorf("Expected 0 messages sent, got %d", stats.MessagesSent)
	}
}
