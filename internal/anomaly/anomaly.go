package anomaly

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the full specification of every anomaly planted in a
// generated dataset. Generators consult it instead of branching on
// scattered literals, and the report emitter derives its text from the
// same values, so the two can never drift apart.
type Profile struct {
	IdentityCluster         IdentityCluster         `yaml:"identity_cluster"`
	HighRiskOutlier         HighRiskOutlier         `yaml:"high_risk_outlier"`
	CompromisedCredential   CompromisedCredential   `yaml:"compromised_credential"`
	DisproportionateBalance DisproportionateBalance `yaml:"disproportionate_balance"`
	JointOwnership          JointOwnership          `yaml:"joint_ownership"`
	StructuringWindow       StructuringWindow       `yaml:"structuring_window"`
	DelinquencyCluster      DelinquencyCluster      `yaml:"delinquency_cluster"`
	PaymentReversal         PaymentReversal         `yaml:"payment_reversal"`
}

// IdentityCluster forces a group of customer ordinals to share a
// surname and near-identical address, simulating synthetic-identity
// fraud.
type IdentityCluster struct {
	Ordinals   []int  `yaml:"ordinals"`
	Surname    string `yaml:"surname"`
	City       string `yaml:"city"`
	State      string `yaml:"state"`
	Zip        string `yaml:"zip"`
	Street     string `yaml:"street"`
	HouseBase  int    `yaml:"house_base"`
	HouseRange int    `yaml:"house_range"`
}

// Contains reports whether the customer at ordinal i belongs to the
// cluster.
func (c IdentityCluster) Contains(i int) bool {
	for _, o := range c.Ordinals {
		if o == i {
			return true
		}
	}
	return false
}

// HighRiskOutlier pins one customer ordinal as a politically exposed
// person with HIGH risk and a fixed large income.
type HighRiskOutlier struct {
	Ordinal int     `yaml:"ordinal"`
	Income  float64 `yaml:"income"`
}

// CompromisedCredential deactivates the outlier's online-banking
// credential after a fixed burst of failed logins.
type CompromisedCredential struct {
	FailedAttempts int `yaml:"failed_attempts"`
}

// DisproportionateBalance sets the outlier's first account balance far
// above anything its declared income supports.
type DisproportionateBalance struct {
	Amount float64 `yaml:"amount"`
}

// JointOwnership binds the identity-cluster customers to one existing
// account, selected by positional index into the committed account
// list.
type JointOwnership struct {
	AccountIndex int `yaml:"account_index"`
}

// StructuringWindow describes the band of transaction loop indices that
// become near-threshold cash withdrawals against the outlier's first
// account. Amounts are drawn from [Threshold*BandLow, Threshold*BandHigh)
// and timestamps step one hour per index starting DaysAgo days in the
// past.
type StructuringWindow struct {
	Start     int     `yaml:"start"`
	End       int     `yaml:"end"`
	Threshold float64 `yaml:"threshold"`
	BandLow   float64 `yaml:"band_low"`
	BandHigh  float64 `yaml:"band_high"`
	DaysAgo   int     `yaml:"days_ago"`
}

// Contains reports whether loop index i falls inside the window. The
// window is inclusive on both ends.
func (w StructuringWindow) Contains(i int) bool {
	return i >= w.Start && i <= w.End
}

// Width is the number of indices in the window.
func (w StructuringWindow) Width() int {
	return w.End - w.Start + 1
}

// DelinquencyCluster forces identity-cluster loans into delinquency.
// Status becomes DEFAULTED when drawn days exceed the default
// threshold; remaining balance is pinned to RemainingRatio of
// principal.
type DelinquencyCluster struct {
	MinDays        int     `yaml:"min_days"`
	MaxDays        int     `yaml:"max_days"`
	RemainingRatio float64 `yaml:"remaining_ratio"`
}

// PaymentReversal marks a single (loan, month) payment as reversed.
type PaymentReversal struct {
	LoanID     int64  `yaml:"loan_id"`
	MonthIndex int    `yaml:"month_index"`
	Reason     string `yaml:"reason"`
}

// DefaultProfile returns the stock anomaly set. The values are part of
// the reproducibility contract: the verify command and the report both
// assume them unless a custom profile is supplied.
func DefaultProfile() *Profile {
	return &Profile{
		IdentityCluster: IdentityCluster{
			Ordinals:   []int{101, 102, 103},
			Surname:    "Johnson",
			City:       "Miami",
			State:      "FL",
			Zip:        "33101",
			Street:     "Oak Street",
			HouseBase:  100,
			HouseRange: 6,
		},
		HighRiskOutlier: HighRiskOutlier{
			Ordinal: 249,
			Income:  15000000.00,
		},
		CompromisedCredential: CompromisedCredential{
			FailedAttempts: 47,
		},
		DisproportionateBalance: DisproportionateBalance{
			Amount: 5000000.00,
		},
		JointOwnership: JointOwnership{
			AccountIndex: 150,
		},
		StructuringWindow: StructuringWindow{
			Start:     2000,
			End:       2050,
			Threshold: 500,
			BandLow:   0.99,
			BandHigh:  0.998,
			DaysAgo:   30,
		},
		DelinquencyCluster: DelinquencyCluster{
			MinDays:        30,
			MaxDays:        90,
			RemainingRatio: 0.85,
		},
		PaymentReversal: PaymentReversal{
			LoanID:     150,
			MonthIndex: 15,
			Reason:     "Insufficient funds - payment reversed after 3 days",
		},
	}
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read anomaly profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse anomaly profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the profile as YAML.
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal anomaly profile: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (p *Profile) Validate() error {
	if len(p.IdentityCluster.Ordinals) == 0 {
		return fmt.Errorf("identity cluster needs at least one ordinal")
	}
	for _, o := range p.IdentityCluster.Ordinals {
		if o == p.HighRiskOutlier.Ordinal {
			return fmt.Errorf("outlier ordinal %d overlaps the identity cluster", o)
		}
	}
	if p.StructuringWindow.End < p.StructuringWindow.Start {
		return fmt.Errorf("structuring window end %d before start %d",
			p.StructuringWindow.End, p.StructuringWindow.Start)
	}
	if p.StructuringWindow.BandHigh <= p.StructuringWindow.BandLow {
		return fmt.Errorf("structuring band is empty")
	}
	if p.PaymentReversal.MonthIndex < 0 {
		return fmt.Errorf("payment reversal month index must not be negative")
	}
	return nil
}

// Findings records the concrete identifiers the anomalies resolved to
// during a run. The report emitter combines them with the Profile to
// produce the investigator document.
type Findings struct {
	ClusterCustomerIDs []int64
	OutlierCustomerID  int64
	OutlierAccountID   int64
	JointAccountID     int64
	FlaggedTxnCount    int
	ClusterLoans       []ClusterLoan
	ReversalLoanID     int64
	ReversalMonth      int
}

// ClusterLoan is a delinquent loan held by an identity-cluster member.
type ClusterLoan struct {
	LoanID          int64
	CustomerID      int64
	DelinquencyDays int
	Status          string
}
