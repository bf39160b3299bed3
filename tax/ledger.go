package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// lot is one unconsumed acquisition. acquiredAt is kept for auditing only,
// lots are never re-sorted after insertion.
type lot struct {
	remaining  decimal.Decimal
	unitCost   decimal.Decimal
	acquiredAt time.Time
}

// LotLedger tracks open acquisition lots per token in strict acquisition
// order and answers cost basis queries for disposals using FIFO matching.
//
// The ledger is in-memory state scoped to a single engine run. It is rebuilt
// from scratch by replaying acquisitions each time a calculation runs, so it
// never carries stale inventory between calls.
type LotLedger struct {
	lots map[string][]lot
}

func NewLotLedger() *LotLedger {
	return &LotLedger{lots: make(map[string][]lot)}
}

// RecordAcquisition appends a new lot to the tail of the token's queue.
func (l *LotLedger) RecordAcquisition(token string, amount, unitCost decimal.Decimal, at time.Time) {
	l.lots[token] = append(l.lots[token], lot{
		remaining:  amount,
		unitCost:   unitCost,
		acquiredAt: at,
	})
}

// Consume matches a disposal against the token's queue from the head and
// returns the matched cost basis together with the portion of the disposal
// that could not be matched.
//
// An unmatched remainder is not an error: inventory that was never recorded
// (rewards, airdrops with no purchase history) is treated as acquired for
// free, and the caller scales the recognized disposal value to the matched
// fraction. The remainder is returned so it can be surfaced for audit.
func (l *LotLedger) Consume(token string, amount decimal.Decimal) (costBasis, unmatched decimal.Decimal) {
	costBasis = decimal.Zero
	remaining := amount

	queue := l.lots[token]
	for len(queue) > 0 && remaining.IsPositive() {
		head := &queue[0]
		if head.remaining.LessThanOrEqual(remaining) {
			// consume the entire lot
			costBasis = costBasis.Add(head.remaining.Mul(head.unitCost))
			remaining = remaining.Sub(head.remaining)
			queue = queue[1:]
		} else {
			// consume a fractional slice of the head lot
			costBasis = costBasis.Add(remaining.Mul(head.unitCost))
			head.remaining = head.remaining.Sub(remaining)
			remaining = decimal.Zero
		}
	}
	l.lots[token] = queue

	return costBasis, remaining
}

// RemainingInventory reports the total unconsumed amount held for a token.
func (l *LotLedger) RemainingInventory(token string) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range l.lots[token] {
		total = total.Add(entry.remaining)
	}
	return total
}
