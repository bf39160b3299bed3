package tax

// Regime is the tax treatment applied to a transaction.
type Regime string

const (
	// RegimeTransfer covers buy/sell/swap activity, taxed at a fixed low
	// rate on disposal value.
	RegimeTransfer Regime = "transfer"
	// RegimeOtherIncome covers staking/airdrop/farming receipts, taxed at a
	// fixed rate on the full received value.
	RegimeOtherIncome Regime = "other_income"
)

// Classify maps a transaction kind to its tax regime. The mapping is total
// and deterministic; kinds that are not taxable default to the transfer
// regime, but Taxable filters those out before the engine ever classifies
// them.
func Classify(kind Kind) Regime {
	switch kind {
	case KindStakingReward, KindAirdrop, KindFarming:
		return RegimeOtherIncome
	default:
		return RegimeTransfer
	}
}

// Taxable reports whether a kind participates in tax processing at all.
// Custody movements (transfers, deposits, withdrawals) are not economic
// disposals or acquisitions and are excluded entirely.
func Taxable(kind Kind) bool {
	switch kind {
	case KindBuy, KindSell, KindSwap, KindStakingReward, KindAirdrop, KindFarming:
		return true
	default:
		return false
	}
}
