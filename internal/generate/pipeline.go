package generate

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mirelabs/bankforge/internal/anomaly"
	"github.com/mirelabs/bankforge/internal/config"
	"github.com/mirelabs/bankforge/internal/faker"
	"github.com/mirelabs/bankforge/internal/randx"
	"github.com/mirelabs/bankforge/internal/store"
)

// Pipeline runs the generation stages in strict dependency order. Every
// stage commits its rows before the next begins, because later stages
// read back previously committed identifiers. The shared random source
// is consumed in call order, so the stage order is part of the
// reproducibility contract.
type Pipeline struct {
	cfg     *config.Config
	st      *store.Store
	src     *randx.Source
	fake    *faker.Faker
	profile *anomaly.Profile
	log     *logrus.Logger

	// Fresh clears all previously generated rows before running.
	Fresh bool

	now      time.Time
	findings anomaly.Findings
}

func New(cfg *config.Config, st *store.Store, profile *anomaly.Profile) *Pipeline {
	src := randx.New(cfg.Generate.Seed)
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &Pipeline{
		cfg:     cfg,
		st:      st,
		src:     src,
		fake:    faker.New(src),
		profile: profile,
		log:     log,
		now:     time.Now().UTC().Truncate(time.Second),
	}
}

// Now returns the reference timestamp all stages generate against.
func (p *Pipeline) Now() time.Time {
	return p.now
}

// Run executes the full generation pass and returns the resolved
// anomaly findings. Any stage error aborts the run; the dataset is
// only meaningful when every stage completed.
func (p *Pipeline) Run(ctx context.Context) (*anomaly.Findings, error) {
	if err := p.checkProfile(); err != nil {
		return nil, err
	}

	p.src.Reset(p.cfg.Generate.Seed)

	color.Cyan("Creating schema...")
	if err := p.st.CreateSchema(ctx); err != nil {
		return nil, err
	}

	if p.Fresh {
		color.Yellow("Clearing existing dataset...")
		if err := p.st.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	stages := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"institutions", p.generateInstitutions},
		{"customers", p.generateCustomers},
		{"credentials", p.generateCredentials},
		{"accounts", p.generateAccounts},
		{"transactions", p.generateTransactions},
		{"loans", p.generateLoans},
		{"payments", p.generatePayments},
		{"service sessions", p.generateSessions},
	}

	for _, stage := range stages {
		color.Cyan("Generating %s...", stage.name)
		start := time.Now()

		if err := p.st.Begin(ctx); err != nil {
			return nil, err
		}
		if err := stage.fn(ctx); err != nil {
			p.st.Rollback()
			return nil, fmt.Errorf("stage %s failed: %w", stage.name, err)
		}
		if err := p.st.Commit(); err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stage.name, err)
		}

		p.log.WithFields(logrus.Fields{
			"stage":   stage.name,
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		}).Info("stage committed")
	}

	color.Green("Generation complete")
	return &p.findings, nil
}

// checkProfile validates that the anomaly targets fit the configured
// record counts. A dataset smaller than the designated ordinals would
// silently drop anomalies, so this is fatal up front.
func (p *Pipeline) checkProfile() error {
	if err := p.profile.Validate(); err != nil {
		return fmt.Errorf("invalid anomaly profile: %w", err)
	}
	n := p.cfg.Generate.Customers
	for _, o := range p.profile.IdentityCluster.Ordinals {
		if o >= n {
			return fmt.Errorf("identity cluster ordinal %d outside customer population %d", o, n)
		}
	}
	if p.profile.HighRiskOutlier.Ordinal >= n {
		return fmt.Errorf("outlier ordinal %d outside customer population %d",
			p.profile.HighRiskOutlier.Ordinal, n)
	}
	if p.profile.StructuringWindow.End >= p.cfg.Generate.Transactions {
		return fmt.Errorf("structuring window end %d outside transaction count %d",
			p.profile.StructuringWindow.End, p.cfg.Generate.Transactions)
	}
	return nil
}

// Summary returns the row count of every generated table.
func (p *Pipeline) Summary(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, table := range store.TableOrder() {
		n, err := p.st.Count(ctx, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// money rounds a drawn amount to cents for storage.
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// rate keeps four decimal places, matching the DECIMAL(6,4) columns.
func rate(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(4)
}
