// Package report renders the investigation guide that ships with a
// generated dataset. Every identifier and figure in the document is
// taken from the resolved findings of the run that produced it, so the
// guide never goes stale against the data.
package report

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/mirelabs/bankforge/internal/anomaly"
)

const documentTemplate = `========================================
ANOMALY INVESTIGATION CHALLENGES
Generated {{.GeneratedAt}} (seed {{.Seed}})
========================================

CHALLENGE 1: Suspicious Transaction Patterns
--------------------------------------------
Question: "I'm investigating potential structuring activity. Can you find any accounts with
multiple cash withdrawals just under the ${{.Threshold}} reporting threshold within a short time
period? Who owns these accounts and what's unusual about their profile?"

Expected Discovery:
- Customer {{.OutlierCustomerID}} has {{.FlaggedTxnCount}} ATM withdrawals between ${{.BandLowAmount}}-${{.BandHighAmount}} within {{.WindowDays}} days on account {{.OutlierAccountID}}
- This customer is marked as a Politically Exposed Person (PEP) with HIGH risk rating
- Their account balance (${{.Balance}}) is disproportionate to declared income
- Transactions occurred across multiple geographic locations
- Credentials show {{.FailedAttempts}} failed login attempts and have been deactivated


CHALLENGE 2: Account Relationship Anomalies
--------------------------------------------
Question: "We've received reports about possible identity theft involving multiple accounts
opened with suspiciously similar information. Can you identify any customer groups that share
the same address but might not be legitimately related? What concerning patterns do you see
in their loan payment history?"

Expected Discovery:
- Customers {{.ClusterIDs}} (the {{.Surname}} cluster) all share addresses on {{.Street}} in {{.ClusterCity}}, {{.ClusterState}}
- They hold a joint account together (account {{.JointAccountID}})
- Their loans carry {{.DelinquencyMin}}-{{.DelinquencyMax}} days of delinquency:{{range .ClusterLoans}}
    loan {{.LoanID}} (customer {{.CustomerID}}): {{.DelinquencyDays}} days, {{.Status}}{{end}}
- Payment patterns show missed and irregular partial payments after month 12
- High volume of complaints and negative sentiment in their service sessions
- This could indicate synthetic identity fraud or family financial distress


CHALLENGE 3: Loan Payment Discrepancies
--------------------------------------------
Question: "Our accounting team noticed some reversed payments that weren't properly
investigated. Can you find any loans where payments were reversed and determine if this
correlates with any other suspicious account activity or customer service interactions?"

Expected Discovery:
- Loan {{.ReversalLoanID}} had a payment reversal in month {{.ReversalMonth}} ("{{.ReversalReason}}")
- Trace the borrower and check their transaction history
- Look for patterns of disputes or complaints in their service sessions
- Check whether this customer carries other delinquent obligations


TIPS FOR INVESTIGATING AGENTS:
------------------------------
1. Start with broad queries to understand table relationships
2. Use JOINs to connect customer, account, transaction, and loan data
3. Look for statistical anomalies with GROUP BY and HAVING
4. Consider time-based patterns and geographic inconsistencies
5. Cross-reference risk indicators: failed logins, PEP status, sentiment scores
`

var tmpl = template.Must(template.New("report").Parse(documentTemplate))

type reportData struct {
	GeneratedAt string
	Seed        int64

	Threshold       string
	BandLowAmount   string
	BandHighAmount  string
	WindowDays      int
	FlaggedTxnCount int

	OutlierCustomerID int64
	OutlierAccountID  int64
	Balance           string
	FailedAttempts    int

	ClusterIDs     string
	Surname        string
	Street         string
	ClusterCity    string
	ClusterState   string
	JointAccountID int64
	DelinquencyMin int
	DelinquencyMax int
	ClusterLoans   []anomaly.ClusterLoan

	ReversalLoanID int64
	ReversalMonth  int
	ReversalReason string
}

// Write renders the investigation guide for one completed run.
func Write(w io.Writer, profile *anomaly.Profile, findings *anomaly.Findings, seed int64, generatedAt time.Time) error {
	window := profile.StructuringWindow

	clusterIDs := ""
	for i, id := range findings.ClusterCustomerIDs {
		if i > 0 {
			clusterIDs += ", "
		}
		clusterIDs += fmt.Sprintf("%d", id)
	}

	data := reportData{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05 MST"),
		Seed:        seed,

		Threshold:       fmt.Sprintf("%.0f", window.Threshold),
		BandLowAmount:   fmt.Sprintf("%.0f", window.Threshold*window.BandLow),
		BandHighAmount:  fmt.Sprintf("%.0f", window.Threshold*window.BandHigh),
		WindowDays:      window.DaysAgo,
		FlaggedTxnCount: findings.FlaggedTxnCount,

		OutlierCustomerID: findings.OutlierCustomerID,
		OutlierAccountID:  findings.OutlierAccountID,
		Balance:           fmt.Sprintf("%.0f", profile.DisproportionateBalance.Amount),
		FailedAttempts:    profile.CompromisedCredential.FailedAttempts,

		ClusterIDs:     clusterIDs,
		Surname:        profile.IdentityCluster.Surname,
		Street:         profile.IdentityCluster.Street,
		ClusterCity:    profile.IdentityCluster.City,
		ClusterState:   profile.IdentityCluster.State,
		JointAccountID: findings.JointAccountID,
		DelinquencyMin: profile.DelinquencyCluster.MinDays,
		DelinquencyMax: profile.DelinquencyCluster.MaxDays,
		ClusterLoans:   findings.ClusterLoans,

		ReversalLoanID: findings.ReversalLoanID,
		ReversalMonth:  findings.ReversalMonth,
		ReversalReason: profile.PaymentReversal.Reason,
	}

	return tmpl.Execute(w, data)
}

// WriteFile renders the guide to path, replacing any previous version.
func WriteFile(path string, profile *anomaly.Profile, findings *anomaly.Findings, seed int64, generatedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := Write(f, profile, findings, seed, generatedAt); err != nil {
		return err
	}
	return f.Close()
}
