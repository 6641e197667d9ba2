package generate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mirelabs/bankforge/internal/randx"
)

var employmentStatuses = []string{"EMPLOYED", "SELF_EMPLOYED", "RETIRED", "STUDENT", "UNEMPLOYED"}

var riskRatings = []string{"LOW", "MEDIUM", "HIGH"}
var riskWeights = []int{70, 25, 5}

// identityHash derives the globally unique customer identifier. The
// ordinal is mixed in before hashing so the hash stays unique even when
// two synthetic national IDs collide.
func identityHash(nationalID string, ordinal int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", nationalID, ordinal)))
	return hex.EncodeToString(sum[:])
}

func (p *Pipeline) generateCustomers(ctx context.Context) error {
	cluster := p.profile.IdentityCluster
	outlier := p.profile.HighRiskOutlier
	n := p.cfg.Generate.Customers

	columns := []string{
		"first_name", "last_name", "date_of_birth", "identity_hash", "email",
		"phone", "address", "city", "state", "zip_code", "customer_since",
		"credit_score", "annual_income", "employment_status", "is_pep", "risk_rating",
	}

	rows := make([][]interface{}, 0, n)
	for i := 0; i < n; i++ {
		var lastName, city, state, address, zip string

		if cluster.Contains(i) {
			// Identity-cluster members share everything but the house
			// number, drawn from a narrow consecutive range.
			lastName = cluster.Surname
			city = cluster.City
			state = cluster.State
			zip = cluster.Zip
			house := cluster.HouseBase + p.src.Intn(cluster.HouseRange)
			address = fmt.Sprintf("%d %s", house, cluster.Street)
		} else {
			lastName = p.fake.LastName()
			city = p.fake.City()
			state = p.fake.StateAbbr()
			address = p.fake.StreetAddress()
			zip = p.fake.ZipCode()
		}

		var isPEP bool
		var riskRating string
		var income float64
		if i == outlier.Ordinal {
			isPEP = true
			riskRating = "HIGH"
			income = outlier.Income
		} else {
			isPEP = p.src.Bool(0.01)
			riskRating = randx.WeightedChoice(p.src, riskRatings, riskWeights)
			income = p.src.Uniform(25000, 250000)
		}

		firstName := p.fake.FirstName()
		email := fmt.Sprintf("%s.%s%d%d@%s",
			strings.ToLower(firstName), strings.ToLower(lastName),
			i, p.src.Between(100, 999), p.fake.EmailDomain())

		rows = append(rows, []interface{}{
			firstName,
			lastName,
			p.fake.DateOfBirth(p.now, 18, 85),
			identityHash(p.fake.SSN(), i),
			email,
			p.fake.Phone(),
			address,
			city,
			state,
			zip,
			p.src.DateWithin(p.now, 10),
			p.src.Between(300, 850),
			money(income),
			randx.Choice(p.src, employmentStatuses),
			isPEP,
			riskRating,
		})
	}

	ids, err := p.st.InsertMany(ctx, "customers", columns, rows)
	if err != nil {
		return err
	}

	for _, o := range cluster.Ordinals {
		p.findings.ClusterCustomerIDs = append(p.findings.ClusterCustomerIDs, ids[o])
	}
	p.findings.OutlierCustomerID = ids[outlier.Ordinal]
	return nil
}
