package phenotype

import (
	"fmt"

	"github.com/inodb/vibe-amr/internal/vcf"
)

// Observation is a translated variant row joined with its isolate's
// phenotype.
type Observation struct {
	UniqueID  string
	Gene      string
	Mutation  string
	Phenotype string
	MethodMIC string
	MIC       float64
}

// Join pairs each row with the sample of the same isolate. Rows of isolates
// without a sample are dropped; the number dropped is returned.
func Join(rows []*vcf.Row, samples map[string]Sample) ([]Observation, int, error) {
	obs := make([]Observation, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		s, ok := samples[row.UniqueID]
		if !ok {
			dropped++
			continue
		}
		mic, err := ParseMIC(s.MethodMIC)
		if err != nil {
			return nil, 0, fmt.Errorf("isolate %s: %w", s.UniqueID, err)
		}
		obs = append(obs, Observation{
			UniqueID:  row.UniqueID,
			Gene:      row.Gene,
			Mutation:  row.Mutation,
			Phenotype: s.Phenotype,
			MethodMIC: s.MethodMIC,
			MIC:       mic,
		})
	}
	return obs, dropped, nil
}

// groupByIsolate returns the isolate ids in order of first appearance and
// the observations of each.
func groupByIsolate(obs []Observation) ([]string, map[string][]Observation) {
	var order []string
	groups := make(map[string][]Observation)
	for _, o := range obs {
		if _, ok := groups[o.UniqueID]; !ok {
			order = append(order, o.UniqueID)
		}
		groups[o.UniqueID] = append(groups[o.UniqueID], o)
	}
	return order, groups
}
