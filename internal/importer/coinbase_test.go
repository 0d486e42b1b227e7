package importer

import (
	"strings"
	"testing"
)

const sampleCSV = `order id,type,amount,amount/balance unit,time
ord-1,match,-100.00,USD,2023-05-01T10:00:00.000Z
ord-1,match,0.05,ETH,2023-05-01T10:00:00.000Z
ord-1,fee,-0.50,USD,2023-05-01T10:00:00.000Z
ord-2,match,60.00,USD,2023-06-15T12:30:00.000Z
ord-2,match,-0.02,ETH,2023-06-15T12:30:00.000Z
ord-2,fee,-0.30,USD,2023-06-15T12:30:00.000Z
,deposit,500.00,USD,2023-04-01T09:00:00.000Z
`

func TestParseCoinbase(t *testing.T) {
	txns, err := ParseCoinbase(strings.NewReader(sampleCSV), "alice")
	if err != nil {
		t.Fatalf("ParseCoinbase: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}

	buy := txns[0]
	if buy.Currency != "eth" || buy.Amount != 0.05 {
		t.Fatalf("buy leg: %+v", buy)
	}
	if buy.Price != 100.00 {
		t.Fatalf("buy price: got %f, want 100 (USD paid is positive)", buy.Price)
	}
	if buy.Date != "2023-05-01" {
		t.Fatalf("buy date: got %s", buy.Date)
	}
	if buy.Owner != "alice" {
		t.Fatalf("owner: got %s", buy.Owner)
	}

	sale := txns[1]
	if sale.Amount != -0.02 || sale.Price != -60.00 {
		t.Fatalf("sale leg must keep negative signs: %+v", sale)
	}
	if sale.Date != "2023-06-15" {
		t.Fatalf("sale date: got %s", sale.Date)
	}
}

func TestParseCoinbase_MissingColumn(t *testing.T) {
	csv := "order id,type,amount\nord-1,match,1.0\n"
	if _, err := ParseCoinbase(strings.NewReader(csv), "alice"); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestParseCoinbase_IncompleteOrderSkipped(t *testing.T) {
	// USD leg only, no coin leg
	csv := `order id,type,amount,amount/balance unit,time
ord-9,match,-50.00,USD,2023-05-01T10:00:00.000Z
`
	txns, err := ParseCoinbase(strings.NewReader(csv), "alice")
	if err != nil {
		t.Fatalf("ParseCoinbase: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("incomplete order should be skipped, got %+v", txns)
	}
}

func TestParseCoinbase_InconsistentSignsSkipped(t *testing.T) {
	// Coin in AND money in: not a valid match pair.
	csv := `order id,type,amount,amount/balance unit,time
ord-8,match,25.00,USD,2023-05-01T10:00:00.000Z
ord-8,match,0.01,BTC,2023-05-01T10:00:00.000Z
`
	txns, err := ParseCoinbase(strings.NewReader(csv), "alice")
	if err != nil {
		t.Fatalf("ParseCoinbase: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("inconsistent order should be skipped, got %+v", txns)
	}
}
