package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mirelabs/bankforge/internal/randx"
)

var failedLoginCounts = []int{0, 1, 2, 3}
var failedLoginWeights = []int{80, 15, 4, 1}

func (p *Pipeline) generateCredentials(ctx context.Context) error {
	customerIDs, err := p.customerIDs(ctx)
	if err != nil {
		return err
	}
	if len(customerIDs) == 0 {
		return fmt.Errorf("no committed customers to build credentials for")
	}

	sampleSize := int(float64(len(customerIDs)) * p.cfg.Generate.CredentialRatio)

	// the outlier always enrolls: its locked-out credential has to exist
	candidates := make([]int64, 0, len(customerIDs))
	for _, id := range customerIDs {
		if id != p.findings.OutlierCustomerID {
			candidates = append(candidates, id)
		}
	}
	if sampleSize > 0 {
		sampleSize--
	}
	sampled, err := randx.Sample(p.src, candidates, sampleSize)
	if err != nil {
		return err
	}
	sampled = append(sampled, p.findings.OutlierCustomerID)

	columns := []string{
		"customer_id", "username", "password_hash", "created_at", "last_login",
		"is_active", "failed_login_attempts", "two_factor_enabled",
	}

	rows := make([][]interface{}, 0, len(sampled))
	for _, customerID := range sampled {
		username := fmt.Sprintf("user%d", customerID)
		secret := sha256.Sum256([]byte(fmt.Sprintf("password%d", customerID)))

		createdAt := p.src.TimeBetween(p.now.AddDate(-3, 0, 0), p.now)
		lastLogin := p.src.TimeBetween(createdAt, p.now)

		var failedAttempts int
		var isActive bool
		if customerID == p.findings.OutlierCustomerID {
			// compromised credential: locked out after a burst of
			// failed logins
			failedAttempts = p.profile.CompromisedCredential.FailedAttempts
			isActive = false
		} else {
			failedAttempts = randx.WeightedChoice(p.src, failedLoginCounts, failedLoginWeights)
			isActive = true
		}

		rows = append(rows, []interface{}{
			customerID,
			username,
			hex.EncodeToString(secret[:]),
			createdAt,
			lastLogin,
			isActive,
			failedAttempts,
			p.src.Bool(0.25),
		})
	}

	_, err = p.st.InsertMany(ctx, "credentials", columns, rows)
	return err
}

func (p *Pipeline) customerIDs(ctx context.Context) ([]int64, error) {
	rows, err := p.st.Select(ctx, p.st.Builder().
		Select("customer_id").From("customers").OrderBy("customer_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to read customer ids: %w", err)
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
