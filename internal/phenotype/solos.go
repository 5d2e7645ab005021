package phenotype

import (
	"sort"

	"gopkg.in/fatih/set.v0"
)

// DefaultThreshold is the minimum number of observations of a mutation
// before its MICs are reported.
const DefaultThreshold = 3

// MinorBreakpoint is the MIC above which a solo isolate carrying minor
// variants counts as resistant.
const MinorBreakpoint = 1.0

// MutationMICs holds MIC values per mutation in insertion order.
type MutationMICs struct {
	order []string
	mics  map[string][]float64
}

// NewMutationMICs creates an empty collection.
func NewMutationMICs() *MutationMICs {
	return &MutationMICs{mics: make(map[string][]float64)}
}

// Add appends MIC values to mutation.
func (m *MutationMICs) Add(mutation string, mics ...float64) {
	if _, ok := m.mics[mutation]; !ok {
		m.order = append(m.order, mutation)
	}
	m.mics[mutation] = append(m.mics[mutation], mics...)
}

// Mutations returns the mutations in the order they were first added.
func (m *MutationMICs) Mutations() []string {
	return m.order
}

// MICs returns the values recorded for mutation.
func (m *MutationMICs) MICs(mutation string) []float64 {
	return m.mics[mutation]
}

// Len returns the number of mutations.
func (m *MutationMICs) Len() int {
	return len(m.order)
}

// Count splits every recorded MIC at ecoff: above is resistant.
func (m *MutationMICs) Count(ecoff float64) RS {
	var rs RS
	for _, mutation := range m.order {
		for _, mic := range m.mics[mutation] {
			rs.add(mic > ecoff)
		}
	}
	return rs
}

// ExtractSolos finds isolates whose observations carry exactly one distinct
// mutation and whose first observation is in gene. It returns each solo
// mutation with the MIC of every isolate carrying it, and the solo ids.
func ExtractSolos(gene string, obs []Observation) (*MutationMICs, []string) {
	solos := NewMutationMICs()
	var ids []string

	order, groups := groupByIsolate(obs)
	for _, id := range order {
		rows := groups[id]
		if distinctMutations(rows) != 1 || rows[0].Gene != gene {
			continue
		}
		ids = append(ids, id)
		solos.Add(rows[0].Mutation, rows[0].MIC)
	}
	return solos, ids
}

// ExtractMICs returns, for every mutation of gene seen at least threshold
// times, the MICs of the observations that do not belong to a solo isolate.
// Mutations are ordered by descending frequency.
func ExtractMICs(gene string, obs []Observation, threshold int, soloIDs []string) *MutationMICs {
	counts := make(map[string]int)
	for _, o := range obs {
		if o.Gene == gene {
			counts[o.Mutation]++
		}
	}

	var frequent []string
	for mutation, n := range counts {
		if n >= threshold {
			frequent = append(frequent, mutation)
		}
	}
	sort.Slice(frequent, func(i, j int) bool {
		if counts[frequent[i]] != counts[frequent[j]] {
			return counts[frequent[i]] > counts[frequent[j]]
		}
		return frequent[i] < frequent[j]
	})

	solo := set.New(set.ThreadSafe)
	for _, id := range soloIDs {
		solo.Add(id)
	}

	mics := NewMutationMICs()
	for _, mutation := range frequent {
		mics.Add(mutation)
		for _, o := range obs {
			if o.Gene == gene && o.Mutation == mutation && !solo.Has(o.UniqueID) {
				mics.Add(mutation, o.MIC)
			}
		}
	}
	return mics
}

func distinctMutations(obs []Observation) int {
	s := set.New(set.ThreadSafe)
	for _, o := range obs {
		s.Add(o.Mutation)
	}
	return s.Size()
}
