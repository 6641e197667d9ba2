package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/mirelabs/bankforge/internal/randx"
)

var paymentMethods = []string{"AUTO_DEBIT", "ONLINE", "CHECK", "CASH"}

var paymentDaysLateItems = []int{0, 0, 0, 3, 7, 15}
var paymentDaysLateWeights = []int{70, 10, 10, 5, 3, 2}

// paymentHistoryCap bounds the backfilled schedule per loan.
const paymentHistoryCap = 36

type servicedLoan struct {
	id          int64
	customerID  int64
	origination time.Time
	monthly     float64
}

func (p *Pipeline) generatePayments(ctx context.Context) error {
	loans, err := p.servicedLoans(ctx)
	if err != nil {
		return err
	}

	cluster := make(map[int64]bool, len(p.findings.ClusterCustomerIDs))
	for _, id := range p.findings.ClusterCustomerIDs {
		cluster[id] = true
	}

	reversal := p.profile.PaymentReversal
	reversalPlaced := false

	columns := []string{
		"loan_id", "payment_date", "scheduled_date", "amount",
		"principal_paid", "interest_paid", "late_fee", "payment_method",
		"transaction_id", "is_reversed", "reversal_reason",
	}

	var rows [][]interface{}
	for _, loan := range loans {
		months := int(p.now.Sub(loan.origination).Hours() / 24 / 30)
		if months > paymentHistoryCap {
			months = paymentHistoryCap
		}

		for month := 1; month <= months; month++ {
			scheduled := loan.origination.Add(time.Duration(month) * 30 * 24 * time.Hour)

			var amount float64
			var daysLate int
			var lateFee float64
			if cluster[loan.customerID] && month > 12 {
				// arrears begin after the first year: half the payments
				// are missed outright, the rest arrive late and short
				if p.src.Bool(0.5) {
					continue
				}
				daysLate = p.src.Between(15, 45)
				amount = loan.monthly * p.src.Uniform(0.5, 0.8)
				lateFee = 50
			} else {
				daysLate = randx.WeightedChoice(p.src, paymentDaysLateItems, paymentDaysLateWeights)
				amount = loan.monthly
				if daysLate > 5 {
					lateFee = 25
				}
			}

			var isReversed bool
			var reason interface{}
			if loan.id == reversal.LoanID && month == reversal.MonthIndex {
				isReversed = true
				reason = reversal.Reason
				reversalPlaced = true
			}

			interestPaid := amount * 0.3
			principalPaid := amount*0.7 - lateFee

			rows = append(rows, []interface{}{
				loan.id,
				scheduled.AddDate(0, 0, daysLate),
				scheduled,
				money(amount),
				money(principalPaid),
				money(interestPaid),
				money(lateFee),
				randx.Choice(p.src, paymentMethods),
				nil,
				isReversed,
				reason,
			})
		}
	}

	if !reversalPlaced {
		return fmt.Errorf("reversal target loan %d month %d produced no payment row",
			reversal.LoanID, reversal.MonthIndex)
	}

	if _, err := p.st.InsertMany(ctx, "payments", columns, rows); err != nil {
		return err
	}

	p.findings.ReversalLoanID = reversal.LoanID
	p.findings.ReversalMonth = reversal.MonthIndex
	return nil
}

func (p *Pipeline) servicedLoans(ctx context.Context) ([]servicedLoan, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("loan_id", "customer_id", "origination_date", "monthly_payment").
		From("loans").
		Where("status IN (?, ?)", "ACTIVE", "DEFAULTED").
		OrderBy("loan_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read serviced loans: %w", err)
	}
	defer rows.Close()

	var loans []servicedLoan
	for rows.Next() {
		var l servicedLoan
		if err := rows.Scan(&l.id, &l.customerID, &l.origination, &l.monthly); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
