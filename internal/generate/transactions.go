package generate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mirelabs/bankforge/internal/randx"
)

var transactionTypes = []string{"DEPOSIT", "WITHDRAWAL", "TRANSFER", "FEE", "INTEREST"}
var transactionTypeWeights = []int{15, 60, 20, 3, 2}

var feeAmounts = []float64{5, 10, 15, 25, 35}

// spendCategories is ordered; the order is part of the deterministic
// draw sequence.
var spendCategories = []string{
	"GROCERIES", "UTILITIES", "ENTERTAINMENT", "DINING", "SHOPPING",
	"TRANSPORTATION", "HEALTHCARE", "EDUCATION", "TRAVEL", "FINANCIAL",
}

var categoryMerchants = map[string][]string{
	"GROCERIES":      {"Whole Foods", "Kroger", "Safeway", "Trader Joes"},
	"UTILITIES":      {"Electric Company", "Water Department", "Gas Company", "Internet Provider"},
	"ENTERTAINMENT":  {"Netflix", "Spotify", "AMC Theaters", "Live Nation"},
	"DINING":         {"Starbucks", "McDonalds", "Chipotle", "Local Restaurant"},
	"SHOPPING":       {"Amazon", "Target", "Walmart", "Best Buy"},
	"TRANSPORTATION": {"Uber", "Shell Gas", "Chevron", "Public Transit"},
	"HEALTHCARE":     {"CVS Pharmacy", "Walgreens", "Medical Center", "Dental Office"},
	"EDUCATION":      {"University", "Online Course Platform", "Bookstore"},
	"TRAVEL":         {"Delta Airlines", "Marriott Hotels", "Airbnb", "Expedia"},
	"FINANCIAL":      {"ATM Withdrawal", "Wire Transfer", "Investment Transfer"},
}

var structuringLocations = []string{"Miami, FL", "New York, NY", "Los Angeles, CA"}

type activeAccount struct {
	id      int64
	balance decimal.Decimal
}

func (p *Pipeline) generateTransactions(ctx context.Context) error {
	accounts, err := p.activeAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no committed active accounts to draw transactions against")
	}

	window := p.profile.StructuringWindow
	total := p.cfg.Generate.Transactions

	// Running balances are tracked across the whole pass rather than
	// re-read per iteration: rows are batch-inserted at the end, so the
	// store cannot answer for balances mid-pass.
	running := make(map[int64]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		running[a.id] = a.balance
	}

	columns := []string{
		"account_id", "transaction_type", "amount", "balance_after",
		"transaction_date", "description", "category", "merchant_name",
		"reference_number", "related_transaction_id", "location",
		"ip_address", "device_id", "is_flagged",
	}

	dateStamp := p.now.Format("20060102")
	rows := make([][]interface{}, 0, total)
	flagged := 0

	for i := 0; i < total; i++ {
		var (
			accountID int64
			txnType   string
			amount    decimal.Decimal
			txnDate   time.Time
			category  string
			merchant  string
			location  string
			isFlagged bool
		)

		if window.Contains(i) && p.findings.OutlierAccountID != 0 {
			// structuring pattern: near-threshold cash withdrawals,
			// one per hour across the window, a month in the past
			accountID = p.findings.OutlierAccountID
			txnType = "WITHDRAWAL"
			amount = money(p.src.Uniform(
				window.Threshold*window.BandLow, window.Threshold*window.BandHigh))
			txnDate = p.now.
				AddDate(0, 0, -window.DaysAgo).
				Add(time.Duration(i-window.Start) * time.Hour)
			category = "FINANCIAL"
			merchant = "ATM Withdrawal"
			location = randx.Choice(p.src, structuringLocations)
			isFlagged = true
			flagged++
		} else {
			account := randx.Choice(p.src, accounts)
			accountID = account.id
			txnType = randx.WeightedChoice(p.src, transactionTypes, transactionTypeWeights)

			switch txnType {
			case "DEPOSIT":
				amount = money(p.src.Uniform(500, 5000))
				category = "FINANCIAL"
				merchant = "Direct Deposit"
			case "WITHDRAWAL":
				amount = money(p.src.Uniform(10, 500))
				category = randx.Choice(p.src, spendCategories)
				merchant = randx.Choice(p.src, categoryMerchants[category])
			case "TRANSFER":
				amount = money(p.src.Uniform(100, 2000))
				category = "FINANCIAL"
				merchant = "Internal Transfer"
			case "FEE":
				amount = money(randx.Choice(p.src, feeAmounts))
				category = "FINANCIAL"
				merchant = "Bank Fee"
			default: // INTEREST
				amount = money(p.src.Uniform(0.01, 50))
				category = "FINANCIAL"
				merchant = "Interest Payment"
			}

			txnDate = p.src.PastTime(p.now, 365*24*time.Hour)
			location = p.fake.Location()
		}

		balance := running[accountID]
		var balanceAfter decimal.Decimal
		switch txnType {
		case "DEPOSIT", "INTEREST":
			balanceAfter = balance.Add(amount)
		default:
			// overdraft limits are deliberately not enforced here;
			// negative balances are part of the generated surface
			balanceAfter = balance.Sub(amount)
		}
		running[accountID] = balanceAfter

		device, err := uuid.NewRandomFromReader(p.src)
		if err != nil {
			return fmt.Errorf("failed to derive device id: %w", err)
		}

		rows = append(rows, []interface{}{
			accountID,
			txnType,
			amount,
			balanceAfter,
			txnDate,
			fmt.Sprintf("%s - %s", txnType, merchant),
			category,
			merchant,
			fmt.Sprintf("TXN%s%06d", dateStamp, i),
			nil,
			location,
			p.fake.IPv4(),
			device.String(),
			isFlagged,
		})
	}

	if _, err := p.st.InsertMany(ctx, "transactions", columns, rows); err != nil {
		return err
	}
	p.findings.FlaggedTxnCount = flagged

	return p.syncBalances(ctx, running)
}

// syncBalances writes each account's final running balance back so the
// stored balance matches balance_after of the account's latest
// transaction. This is the single deliberate revisit of an earlier
// stage's rows.
func (p *Pipeline) syncBalances(ctx context.Context, running map[int64]decimal.Decimal) error {
	ids := make([]int64, 0, len(running))
	for id := range running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := p.st.UpdateAccountBalance(ctx, id, running[id]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) activeAccounts(ctx context.Context) ([]activeAccount, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("account_id", "balance").From("accounts").
		Where("status = ?", "ACTIVE").OrderBy("account_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []activeAccount
	for rows.Next() {
		var a activeAccount
		if err := rows.Scan(&a.id, &a.balance); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
