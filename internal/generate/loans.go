package generate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mirelabs/bankforge/internal/anomaly"
	"github.com/mirelabs/bankforge/internal/randx"
)

// creditTier describes which products a score band qualifies for and
// the base rate priced against that band.
type creditTier struct {
	minScore  int
	loanTypes []string
	baseRate  float64
}

var creditTiers = []creditTier{
	{750, []string{"MORTGAGE", "AUTO", "PERSONAL"}, 0.03},
	{650, []string{"AUTO", "PERSONAL"}, 0.05},
	{0, []string{"PERSONAL"}, 0.08},
}

func tierFor(creditScore int) creditTier {
	for _, t := range creditTiers {
		if creditScore >= t.minScore {
			return t
		}
	}
	return creditTiers[len(creditTiers)-1]
}

var delinquencyDaysItems = []int{0, 0, 0, 0, 15, 30}
var delinquencyDaysWeights = []int{70, 10, 10, 5, 3, 2}

// monthlyPayment is the standard amortization formula at a monthly
// compounding rate.
func monthlyPayment(principal, annualRate float64, termMonths int) float64 {
	r := annualRate / 12
	if r == 0 {
		return principal / float64(termMonths)
	}
	factor := math.Pow(1+r, float64(termMonths))
	return principal * r * factor / (factor - 1)
}

func (p *Pipeline) generateLoans(ctx context.Context) error {
	creditScores, err := p.creditScores(ctx)
	if err != nil {
		return err
	}
	institutionIDs, err := p.institutionIDs(ctx)
	if err != nil {
		return err
	}

	borrowers, err := p.sampleBorrowers(ctx)
	if err != nil {
		return err
	}

	cluster := make(map[int64]bool, len(p.findings.ClusterCustomerIDs))
	for _, id := range p.findings.ClusterCustomerIDs {
		cluster[id] = true
	}

	columns := []string{
		"customer_id", "institution_id", "loan_type", "principal_amount",
		"interest_rate", "term_months", "monthly_payment", "remaining_balance",
		"origination_date", "maturity_date", "status", "collateral_value",
		"collateral_type", "delinquency_days",
	}

	type pendingCluster struct {
		rowIdx     int
		customerID int64
		delinqDays int
		status     string
	}

	rows := make([][]interface{}, 0, len(borrowers))
	var pending []pendingCluster

	for _, customerID := range borrowers {
		tier := tierFor(creditScores[customerID])
		loanType := randx.Choice(p.src, tier.loanTypes)

		var principal float64
		var termMonths int
		var annualRate float64
		switch loanType {
		case "MORTGAGE":
			principal = p.src.Uniform(150000, 1000000)
			termMonths = randx.Choice(p.src, []int{180, 360})
			annualRate = tier.baseRate + p.src.Uniform(0, 0.02)
		case "AUTO":
			principal = p.src.Uniform(15000, 75000)
			termMonths = randx.Choice(p.src, []int{36, 48, 60, 72})
			annualRate = tier.baseRate + p.src.Uniform(0.01, 0.03)
		default: // PERSONAL
			principal = p.src.Uniform(5000, 50000)
			termMonths = randx.Choice(p.src, []int{12, 24, 36, 48, 60})
			annualRate = tier.baseRate + p.src.Uniform(0.02, 0.05)
		}

		latest := p.now.AddDate(0, -6, 0)
		if int64(len(rows)+1) == p.profile.PaymentReversal.LoanID {
			// the reversal target needs enough elapsed history for the
			// reversed month to exist
			latest = p.now.AddDate(0, -(p.profile.PaymentReversal.MonthIndex + 2), 0)
		}
		origination := p.src.TimeBetween(p.now.AddDate(-5, 0, 0), latest)
		maturity := origination.Add(time.Duration(termMonths) * 30 * 24 * time.Hour)

		var status string
		var remaining float64
		var delinqDays int
		if cluster[customerID] {
			// delinquency cluster: everyone is behind, and deep enough
			// arrears tip into default
			delinqDays = p.src.Between(
				p.profile.DelinquencyCluster.MinDays, p.profile.DelinquencyCluster.MaxDays)
			status = "ACTIVE"
			if delinqDays > 60 {
				status = "DEFAULTED"
			}
			remaining = principal * p.profile.DelinquencyCluster.RemainingRatio
			pending = append(pending, pendingCluster{
				rowIdx:     len(rows),
				customerID: customerID,
				delinqDays: delinqDays,
				status:     status,
			})
		} else {
			delinqDays = randx.WeightedChoice(p.src, delinquencyDaysItems, delinquencyDaysWeights)
			status = "ACTIVE"

			monthsElapsed := int(p.now.Sub(origination).Hours() / 24 / 30)
			if monthsElapsed <= 0 {
				remaining = principal
			} else {
				paymentsMade := monthsElapsed
				if limit := int(0.3 * float64(termMonths)); paymentsMade > limit {
					paymentsMade = limit
				}
				remaining = principal * (1 - float64(paymentsMade)/float64(termMonths))
			}
		}

		var collateralValue interface{}
		var collateralType interface{}
		switch loanType {
		case "MORTGAGE":
			collateralValue = money(principal * 1.2)
			collateralType = "REAL_ESTATE"
		case "AUTO":
			collateralValue = money(principal * 1.2)
			collateralType = "VEHICLE"
		}

		rows = append(rows, []interface{}{
			customerID,
			randx.Choice(p.src, institutionIDs),
			loanType,
			money(principal),
			rate(annualRate),
			termMonths,
			money(monthlyPayment(principal, annualRate, termMonths)),
			money(remaining),
			origination,
			maturity,
			status,
			collateralValue,
			collateralType,
			delinqDays,
		})
	}

	loanIDs, err := p.st.InsertMany(ctx, "loans", columns, rows)
	if err != nil {
		return err
	}

	for _, pc := range pending {
		p.findings.ClusterLoans = append(p.findings.ClusterLoans, anomaly.ClusterLoan{
			LoanID:          loanIDs[pc.rowIdx],
			CustomerID:      pc.customerID,
			DelinquencyDays: pc.delinqDays,
			Status:          pc.status,
		})
	}
	return nil
}

// sampleBorrowers picks the loan population. The identity-cluster
// customers are always included so every run carries the delinquency
// pattern; the rest of the sample is drawn from the remaining
// customers.
func (p *Pipeline) sampleBorrowers(ctx context.Context) ([]int64, error) {
	customerIDs, err := p.customerIDs(ctx)
	if err != nil {
		return nil, err
	}

	cluster := make(map[int64]bool, len(p.findings.ClusterCustomerIDs))
	for _, id := range p.findings.ClusterCustomerIDs {
		cluster[id] = true
	}

	candidates := make([]int64, 0, len(customerIDs))
	for _, id := range customerIDs {
		if !cluster[id] {
			candidates = append(candidates, id)
		}
	}

	n := p.cfg.Generate.LoanSample - len(p.findings.ClusterCustomerIDs)
	if n < 0 {
		n = 0
	}
	sampled, err := randx.Sample(p.src, candidates, n)
	if err != nil {
		return nil, fmt.Errorf("loan sample exceeds customer population: %w", err)
	}
	return append(sampled, p.findings.ClusterCustomerIDs...), nil
}

func (p *Pipeline) creditScores(ctx context.Context) (map[int64]int, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("customer_id", "credit_score").From("customers").OrderBy("customer_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read credit scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[int64]int)
	for rows.Next() {
		var id int64
		var score int
		if err := rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		scores[id] = score
	}
	return scores, rows.Err()
}
