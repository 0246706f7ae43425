package model

import (
	"encoding/json"
	"testing"
)

func TestRowSentinelDefaults(t *testing.T) {
	row := FuturesRow{Time: 1700000000000}

	if got := row.ExchangeOrDefault(); got != DefaultExchangeName {
		t.Errorf("Expected %q, got %q", DefaultExchangeName, got)
	}
	if got := row.ProductOrDefault(); got != DefaultProductName {
		t.Errorf("Expected %q, got %q", DefaultProductName, got)
	}

	row.Exchange = "bybit"
	row.Product = "ETH-PERP"
	if got := row.ExchangeOrDefault(); got != "bybit" {
		t.Errorf("Expected 'bybit', got %q", got)
	}
	if got := row.ProductOrDefault(); got != "ETH-PERP" {
		t.Errorf("Expected 'ETH-PERP', got %q", got)
	}
}

func TestSnapshotRowCount(t *testing.T) {
	snapshot := FuturesSnapshot{
		"BTC": {
			{Product: "BTCUSDT", Data: []FuturesRow{{Time: 1}, {Time: 2}}},
			{Product: "BTC-PERP", Data: []FuturesRow{{Time: 3}}},
		},
		"ETH": {},
	}

	if got := snapshot.RowCount(); got != 3 {
		t.Errorf("Expected 3 rows, got %d", got)
	}
}

func TestRowJSONShape(t *testing.T) {
	payload := `{"exchange":"binance-futures","product":"BTC-PERP","time":1700000000000,"funding_rate":0.0001,"total_trades":523}`

	var row FuturesRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if row.FundingRate != 0.0001 || row.TotalTrades != 523 || row.Time != 1700000000000 {
		t.Errorf("Unexpected row: %+v", row)
	}

	// Optional fields absent on the wire decode to empty strings.
	var bare FuturesRow
	if err := json.Unmarshal([]byte(`{"time":1,"funding_rate":0.5,"total_trades":2}`), &bare); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if bare.Exchange != "" || bare.Product != "" {
		t.Errorf("Expected empty optional fields, got %+v", bare)
	}
}
