// Package importer turns exchange export files into ledger transactions.
// Only Coinbase account-statement CSVs are supported for now.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/eulaly/discoin-backend/internal/models"
)

// Coinbase statements split one order across several rows: a USD "match"
// row, a coin "match" row, and a "fee" row, all sharing an order id.
// Deposits and withdrawals carry a trade id instead and are skipped, they
// move fiat, not coins.
const (
	colOrderID = "order id"
	colType    = "type"
	colAmount  = "amount"
	colUnit    = "amount/balance unit"
	colTime    = "time"
)

// ParseCoinbase reads a Coinbase CSV export and groups its rows into
// transactions for the given owner. Sale rows keep their negative signs so
// the ledger's sign convention holds without special-casing.
func ParseCoinbase(r io.Reader, owner string) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colOrderID, colType, colAmount, colUnit, colTime} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}

	type order struct {
		txn     models.Transaction
		hasCoin bool
		hasUSD  bool
	}
	orders := make(map[string]*order)
	var orderIDs []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		id := record[cols[colOrderID]]
		if id == "" {
			continue // deposits/withdrawals have no order id
		}

		o, ok := orders[id]
		if !ok {
			o = &order{txn: models.Transaction{Owner: owner}}
			orders[id] = o
			orderIDs = append(orderIDs, id)
		}

		amount, err := strconv.ParseFloat(record[cols[colAmount]], 64)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad amount %q", id, record[cols[colAmount]])
		}

		if date, err := parseStatementTime(record[cols[colTime]]); err == nil {
			o.txn.Date = date
		}

		rowType := strings.ToLower(record[cols[colType]])
		unit := record[cols[colUnit]]
		switch {
		case unit == "USD" && rowType != "fee":
			// USD leg: money out on a buy, money in on a sale. The ledger
			// stores USD paid as positive, so flip the statement's sign.
			o.txn.Price = -amount
			o.hasUSD = true
		case unit != "USD":
			o.txn.Amount = amount
			o.txn.Currency = strings.ToLower(unit)
			o.hasCoin = true
		}
	}

	var out []models.Transaction
	for _, id := range orderIDs {
		o := orders[id]
		if !o.hasCoin || !o.hasUSD {
			fmt.Printf("[IMPORT] Skipping incomplete order %s\n", id)
			continue
		}
		// Guard against sign drift between the two legs: after the USD flip
		// both fields carry the ledger sign, positive on a buy, negative on
		// a sale.
		if o.txn.Amount != 0 && math.Signbit(o.txn.Amount) != math.Signbit(o.txn.Price) {
			fmt.Printf("[IMPORT] Skipping order %s with inconsistent signs\n", id)
			continue
		}
		out = append(out, o.txn)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func parseStatementTime(s string) (string, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z", time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized time %q", s)
}
