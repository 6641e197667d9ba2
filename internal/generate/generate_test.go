package generate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirelabs/bankforge/internal/randx"
)

func TestMonthlyPayment(t *testing.T) {
	// 30-year mortgage, $300k at 4.5%
	got := monthlyPayment(300000, 0.045, 360)
	assert.InDelta(t, 1520.06, got, 0.01)

	// zero-rate loans amortize linearly
	assert.InDelta(t, 1000.0, monthlyPayment(12000, 0, 12), 0.001)

	// total repaid must exceed principal at any positive rate
	assert.Greater(t, monthlyPayment(50000, 0.08, 60)*60, 50000.0)
}

func TestTierFor(t *testing.T) {
	top := tierFor(800)
	assert.Contains(t, top.loanTypes, "MORTGAGE")
	assert.Equal(t, 0.03, top.baseRate)

	mid := tierFor(700)
	assert.NotContains(t, mid.loanTypes, "MORTGAGE")
	assert.Contains(t, mid.loanTypes, "AUTO")
	assert.Equal(t, 0.05, mid.baseRate)

	low := tierFor(400)
	assert.Equal(t, []string{"PERSONAL"}, low.loanTypes)
	assert.Equal(t, 0.08, low.baseRate)

	assert.Equal(t, 0.03, tierFor(750).baseRate)
	assert.Equal(t, 0.05, tierFor(749).baseRate)
}

func TestIdentityHash(t *testing.T) {
	a := identityHash("123-45-6789", 0)
	b := identityHash("123-45-6789", 0)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	// same national ID, different ordinal stays unique
	assert.NotEqual(t, a, identityHash("123-45-6789", 1))
}

func TestMoneyAndRateRounding(t *testing.T) {
	assert.True(t, money(1520.0649).Equal(decimal.NewFromFloat(1520.06)))
	assert.True(t, money(0.005).Equal(decimal.NewFromFloat(0.01)))
	assert.True(t, rate(0.04567).Equal(decimal.NewFromFloat(0.0457)))
}

func TestBuildTranscript(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := buildTranscript("This transaction wasn't mine", start)
	require.NoError(t, err)

	var tr transcript
	require.NoError(t, json.Unmarshal([]byte(raw), &tr))
	require.Len(t, tr.Messages, 3)

	assert.Equal(t, "customer", tr.Messages[0].Role)
	assert.Equal(t, "This transaction wasn't mine", tr.Messages[0].Content)
	assert.Equal(t, "agent", tr.Messages[1].Role)
	assert.Equal(t, "customer", tr.Messages[2].Role)

	first, err := time.Parse(time.RFC3339, tr.Messages[0].Timestamp)
	require.NoError(t, err)
	second, err := time.Parse(time.RFC3339, tr.Messages[1].Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, second.Sub(first))
}

func TestAccountInterestRateBands(t *testing.T) {
	p := &Pipeline{src: randx.New(1)}

	for i := 0; i < 200; i++ {
		assert.Equal(t, 0.0, p.accountInterestRate("CHECKING"))

		savings := p.accountInterestRate("SAVINGS")
		assert.GreaterOrEqual(t, savings, 0.01)
		assert.Less(t, savings, 0.05)

		cd := p.accountInterestRate("CD")
		assert.GreaterOrEqual(t, cd, 0.03)
		assert.Less(t, cd, 0.07)
	}
}

func TestTransactionTypeTablesAlign(t *testing.T) {
	require.Len(t, transactionTypeWeights, len(transactionTypes))
	for _, category := range spendCategories {
		assert.NotEmpty(t, categoryMerchants[category], "category %s has no merchants", category)
	}
}

func TestBalanceArithmetic(t *testing.T) {
	balance := decimal.NewFromFloat(1000)

	afterDeposit := balance.Add(money(250.50))
	assert.True(t, afterDeposit.Equal(decimal.NewFromFloat(1250.50)))

	afterWithdrawal := afterDeposit.Sub(money(2000))
	assert.True(t, afterWithdrawal.IsNegative())

	// decimal arithmetic keeps cents exact across long chains
	v := decimal.Zero
	for i := 0; i < 1000; i++ {
		v = v.Add(money(0.10))
	}
	assert.True(t, v.Equal(decimal.NewFromFloat(100)))
}
