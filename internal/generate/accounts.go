package generate

import (
	"context"
	"fmt"

	"github.com/mirelabs/bankforge/internal/randx"
)

var accountTypes = []string{"CHECKING", "SAVINGS", "MONEY_MARKET", "CD"}

var accountCounts = []int{1, 2, 3, 4}
var accountCountWeights = []int{40, 35, 20, 5}

var overdraftLimits = []float64{0, 500, 1000}

// accountInterestRate draws a type-tiered annual rate. CHECKING pays
// nothing.
func (p *Pipeline) accountInterestRate(accountType string) float64 {
	switch accountType {
	case "SAVINGS":
		return p.src.Uniform(0.01, 0.05)
	case "MONEY_MARKET":
		return p.src.Uniform(0.02, 0.06)
	case "CD":
		return p.src.Uniform(0.03, 0.07)
	default:
		return 0
	}
}

func (p *Pipeline) generateAccounts(ctx context.Context) error {
	customerIDs, err := p.customerIDs(ctx)
	if err != nil {
		return err
	}
	institutionIDs, err := p.institutionIDs(ctx)
	if err != nil {
		return err
	}
	if len(institutionIDs) == 0 {
		return fmt.Errorf("no committed institutions to attach accounts to")
	}

	columns := []string{
		"account_number", "institution_id", "account_type", "balance",
		"currency", "opened_date", "closed_date", "status", "interest_rate",
		"overdraft_limit",
	}

	var rows [][]interface{}
	outlierFirstIdx := -1

	for i, customerID := range customerIDs {
		numAccounts := randx.WeightedChoice(p.src, accountCounts, accountCountWeights)

		for j := 0; j < numAccounts; j++ {
			// monotonic derivation keeps account numbers unique
			accountNumber := fmt.Sprintf("%d", 1000000000+(i*10)+j)
			accountType := randx.Choice(p.src, accountTypes)

			var balance float64
			if customerID == p.findings.OutlierCustomerID {
				if j == 0 {
					balance = p.profile.DisproportionateBalance.Amount
					outlierFirstIdx = len(rows)
				} else {
					balance = p.src.Uniform(1000, 50000)
				}
			} else {
				balance = p.src.Uniform(100, 100000)
			}

			overdraft := 0.0
			if accountType == "CHECKING" {
				overdraft = randx.Choice(p.src, overdraftLimits)
			}

			rows = append(rows, []interface{}{
				accountNumber,
				randx.Choice(p.src, institutionIDs),
				accountType,
				money(balance),
				"USD",
				p.src.DateWithin(p.now, 5),
				nil,
				"ACTIVE",
				rate(p.accountInterestRate(accountType)),
				money(overdraft),
			})
		}
	}

	accountIDs, err := p.st.InsertMany(ctx, "accounts", columns, rows)
	if err != nil {
		return err
	}
	if outlierFirstIdx >= 0 {
		p.findings.OutlierAccountID = accountIDs[outlierFirstIdx]
	}

	return p.generateOwnership(ctx, accountIDs, customerIDs)
}

// generateOwnership assigns one PRIMARY owner per account by cycling
// through the customer list, then binds the identity-cluster customers
// to one existing account as JOINT owners.
func (p *Pipeline) generateOwnership(ctx context.Context, accountIDs, customerIDs []int64) error {
	columns := []string{"account_id", "customer_id", "relationship_type", "added_date"}

	rows := make([][]interface{}, 0, len(accountIDs)+len(p.findings.ClusterCustomerIDs))
	for i, accountID := range accountIDs {
		rows = append(rows, []interface{}{
			accountID,
			customerIDs[i%len(customerIDs)],
			"PRIMARY",
			p.src.DateWithin(p.now, 5),
		})
	}

	jointIdx := p.profile.JointOwnership.AccountIndex
	if jointIdx >= len(accountIDs) {
		return fmt.Errorf("joint ownership account index %d outside committed accounts (%d)",
			jointIdx, len(accountIDs))
	}
	jointAccountID := accountIDs[jointIdx]
	primaryOwner := customerIDs[jointIdx%len(customerIDs)]
	for _, clusterCustomerID := range p.findings.ClusterCustomerIDs {
		if clusterCustomerID == primaryOwner {
			// already on the account as PRIMARY
			continue
		}
		rows = append(rows, []interface{}{
			jointAccountID,
			clusterCustomerID,
			"JOINT",
			p.src.DateWithin(p.now, 2),
		})
	}
	p.findings.JointAccountID = jointAccountID

	return p.st.InsertRows(ctx, "account_owners", columns, rows)
}

func (p *Pipeline) institutionIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("institution_id").From("institutions").OrderBy("institution_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read institution ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
