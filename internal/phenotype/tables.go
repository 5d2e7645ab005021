package phenotype

import (
	"gopkg.in/fatih/set.v0"
)

// TotalRow names the summary row of a count table.
const TotalRow = "Total"

// CountRow is one line of an R/S count table.
type CountRow struct {
	Name  string
	R     int
	S     int
	Total int
}

// IsolateTable counts distinct isolates by phenotype, over all observations
// and then per gene. The per gene total only includes R and S isolates.
func IsolateTable(obs []Observation, genes []string) []CountRow {
	table := []CountRow{isolateCounts(TotalRow, obs, true)}
	for _, gene := range genes {
		table = append(table, isolateCounts(gene, filterGene(obs, gene), false))
	}
	return table
}

func isolateCounts(name string, obs []Observation, allTotal bool) CountRow {
	r, s, all := set.New(set.ThreadSafe), set.New(set.ThreadSafe), set.New(set.ThreadSafe)
	for _, o := range obs {
		all.Add(o.UniqueID)
		switch o.Phenotype {
		case Resistant:
			r.Add(o.UniqueID)
		case Susceptible:
			s.Add(o.UniqueID)
		}
	}
	row := CountRow{Name: name, R: r.Size(), S: s.Size(), Total: r.Size() + s.Size()}
	if allTotal {
		row.Total = all.Size()
	}
	return row
}

// VariantTable counts observations by phenotype, over all observations and
// then per gene.
func VariantTable(obs []Observation, genes []string) []CountRow {
	table := []CountRow{variantCounts(TotalRow, obs, true)}
	for _, gene := range genes {
		table = append(table, variantCounts(gene, filterGene(obs, gene), false))
	}
	return table
}

func variantCounts(name string, obs []Observation, allTotal bool) CountRow {
	row := CountRow{Name: name}
	for _, o := range obs {
		switch o.Phenotype {
		case Resistant:
			row.R++
		case Susceptible:
			row.S++
		}
	}
	row.Total = row.R + row.S
	if allTotal {
		row.Total = len(obs)
	}
	return row
}

func filterGene(obs []Observation, gene string) []Observation {
	var out []Observation
	for _, o := range obs {
		if o.Gene == gene {
			out = append(out, o)
		}
	}
	return out
}
