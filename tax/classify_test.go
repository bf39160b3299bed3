package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		kind   Kind
		regime Regime
	}{
		{KindBuy, RegimeTransfer},
		{KindSell, RegimeTransfer},
		{KindSwap, RegimeTransfer},
		{KindStakingReward, RegimeOtherIncome},
		{KindAirdrop, RegimeOtherIncome},
		{KindFarming, RegimeOtherIncome},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.regime, Classify(tc.kind), "kind %s", tc.kind)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	// classification is a pure function: repeated calls in any order give the
	// same answer
	first := Classify(KindStakingReward)
	Classify(KindSell)
	Classify(KindBuy)
	assert.Equal(t, first, Classify(KindStakingReward))
}

func TestTaxable(t *testing.T) {
	taxable := []Kind{KindBuy, KindSell, KindSwap, KindStakingReward, KindAirdrop, KindFarming}
	for _, kind := range taxable {
		assert.True(t, Taxable(kind), "kind %s should be taxable", kind)
	}

	custody := []Kind{KindTransferIn, KindTransferOut, KindDeposit, KindWithdrawal}
	for _, kind := range custody {
		assert.False(t, Taxable(kind), "kind %s is custody movement, not taxable", kind)
	}
}
