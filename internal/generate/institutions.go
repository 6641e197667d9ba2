package generate

import (
	"context"
	"time"
)

// institutionSeed is the fixed reference set. Routing codes are unique
// by construction; nothing anomalous is planted here.
var institutionSeed = []struct {
	name    string
	routing string
	country string
	city    string
	founded string
}{
	{"First National Bank", "FNBAUS33", "USA", "New York", "1863-06-03"},
	{"Global Trust Bank", "GTBKUS44", "USA", "San Francisco", "1985-04-15"},
	{"Community Savings Bank", "CSBKUS66", "USA", "Chicago", "1924-11-20"},
	{"Digital First Bank", "DFBKUS77", "USA", "Austin", "2018-01-10"},
	{"Metropolitan Bank & Trust", "MBTCUS22", "USA", "Los Angeles", "1962-07-08"},
}

func (p *Pipeline) generateInstitutions(ctx context.Context) error {
	columns := []string{"name", "routing_code", "country", "city", "founded_date"}

	rows := make([][]interface{}, 0, len(institutionSeed))
	for _, inst := range institutionSeed {
		founded, err := time.Parse("2006-01-02", inst.founded)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			inst.name, inst.routing, inst.country, inst.city, founded,
		})
	}

	_, err := p.st.InsertMany(ctx, "institutions", columns, rows)
	return err
}
