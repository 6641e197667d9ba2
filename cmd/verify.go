package cmd

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mirelabs/bankforge/internal/anomaly"
	"github.com/mirelabs/bankforge/internal/config"
	"github.com/mirelabs/bankforge/internal/store"
)

var verifyProfile string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a generated dataset",
	Long: `Run consistency checks against the configured database: every planted
anomaly must be present and the structural invariants must hold.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		profile := anomaly.DefaultProfile()
		if verifyProfile != "" {
			cfg.AnomalyProfile = verifyProfile
		}
		if cfg.AnomalyProfile != "" {
			profile, err = anomaly.LoadProfile(cfg.AnomalyProfile)
			if err != nil {
				return err
			}
		}

		dbURL, err := cfg.GetDatabaseURL()
		if err != nil {
			return err
		}
		st, err := store.Open(cfg.Database.Provider, dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()

		checks := []struct {
			name string
			fn   func(context.Context, *store.Store, *anomaly.Profile) (bool, string, error)
		}{
			{"identity cluster shares an address", checkIdentityCluster},
			{"high-risk PEP outlier present", checkOutlier},
			{"compromised credential locked out", checkCompromisedCredential},
			{"disproportionate balance present", checkDisproportionateBalance},
			{"structuring window fully flagged", checkStructuringWindow},
			{"joint ownership on shared account", checkJointOwnership},
			{"delinquency cluster on loans", checkDelinquencyCluster},
			{"single reversed payment", checkPaymentReversal},
			{"account balances match last transaction", checkBalanceConsistency},
		}

		failed := 0
		for _, check := range checks {
			ok, detail, err := check.fn(cmd.Context(), st, profile)
			if err != nil {
				return fmt.Errorf("check %q errored: %w", check.name, err)
			}
			if ok {
				color.Green("✓ %s (%s)", check.name, detail)
			} else {
				color.Red("✗ %s (%s)", check.name, detail)
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d checks failed", failed, len(checks))
		}
		fmt.Println()
		color.Green("All %d checks passed", len(checks))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyProfile, "profile", "", "Path to the YAML anomaly profile the dataset was generated with")
}

func countWhere(ctx context.Context, st *store.Store, builder sq.SelectBuilder) (int64, error) {
	row, err := st.QueryRow(ctx, builder)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func checkIdentityCluster(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	c := p.IdentityCluster
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("customers").
		Where(sq.Eq{"last_name": c.Surname, "city": c.City, "state": c.State, "zip_code": c.Zip}))
	if err != nil {
		return false, "", err
	}
	want := int64(len(c.Ordinals))
	return n >= want, fmt.Sprintf("%d customers at %s in %s", n, c.Street, c.City), nil
}

func checkOutlier(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("customers").
		Where(sq.Eq{"is_pep": true, "risk_rating": "HIGH"}).
		Where(sq.GtOrEq{"annual_income": p.HighRiskOutlier.Income}))
	if err != nil {
		return false, "", err
	}
	return n == 1, fmt.Sprintf("%d matching customers", n), nil
}

func checkCompromisedCredential(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("credentials").
		Where(sq.Eq{
			"failed_login_attempts": p.CompromisedCredential.FailedAttempts,
			"is_active":             false,
		}))
	if err != nil {
		return false, "", err
	}
	return n == 1, fmt.Sprintf("%d locked credentials", n), nil
}

func checkDisproportionateBalance(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	// the structuring withdrawals and ordinary account activity drain
	// part of the planted balance after the account is created
	drained := p.DisproportionateBalance.Amount * 0.9
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("accounts").
		Where(sq.GtOrEq{"balance": drained}))
	if err != nil {
		return false, "", err
	}
	return n >= 1, fmt.Sprintf("%d accounts at or above %.0f", n, drained), nil
}

func checkStructuringWindow(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	w := p.StructuringWindow
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("transactions").
		Where(sq.Eq{"is_flagged": true, "transaction_type": "WITHDRAWAL"}).
		Where(sq.GtOrEq{"amount": w.Threshold * w.BandLow}).
		Where(sq.Lt{"amount": w.Threshold}))
	if err != nil {
		return false, "", err
	}
	return n == int64(w.Width()), fmt.Sprintf("%d flagged near-threshold withdrawals, want %d", n, w.Width()), nil
}

func checkJointOwnership(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	row, err := st.QueryRow(ctx, st.Builder().
		Select("COUNT(DISTINCT customer_id)").From("account_owners").
		Where(sq.Eq{"relationship_type": "JOINT"}))
	if err != nil {
		return false, "", err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return false, "", err
	}
	return n >= 2, fmt.Sprintf("%d joint owners", n), nil
}

func checkDelinquencyCluster(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	c := p.IdentityCluster
	d := p.DelinquencyCluster
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").
		From("loans l").
		Join("customers c ON c.customer_id = l.customer_id").
		Where(sq.Eq{"c.last_name": c.Surname, "c.city": c.City}).
		Where(sq.GtOrEq{"l.delinquency_days": d.MinDays}).
		Where(sq.LtOrEq{"l.delinquency_days": d.MaxDays}))
	if err != nil {
		return false, "", err
	}
	return n >= int64(len(c.Ordinals)), fmt.Sprintf("%d delinquent cluster loans", n), nil
}

func checkPaymentReversal(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").From("payments").
		Where(sq.Eq{"is_reversed": true}))
	if err != nil {
		return false, "", err
	}
	return n == 1, fmt.Sprintf("%d reversed payments", n), nil
}

func checkBalanceConsistency(ctx context.Context, st *store.Store, p *anomaly.Profile) (bool, string, error) {
	n, err := countWhere(ctx, st, st.Builder().
		Select("COUNT(*)").
		From("accounts a").
		Join("transactions t ON t.account_id = a.account_id").
		Where("t.transaction_id = (SELECT MAX(t2.transaction_id) FROM transactions t2 WHERE t2.account_id = a.account_id)").
		Where("t.balance_after <> a.balance"))
	if err != nil {
		return false, "", err
	}
	return n == 0, fmt.Sprintf("%d accounts out of sync", n), nil
}
