package phenotype

// RS is a resistant / susceptible pair of counts.
type RS struct {
	R int
	S int
}

func (rs *RS) add(resistant bool) {
	if resistant {
		rs.R++
	} else {
		rs.S++
	}
}

// Tabulation summarises MICs against an epidemiological cutoff.
type Tabulation struct {
	// Variants counts every MIC of frequent mutations and of solos.
	Variants RS
	Solos    RS
	// Minor counts solo isolates that carry more than one distinct
	// mutation across obs, split at MinorBreakpoint.
	Minor RS
}

// Tabulate classifies MICs as resistant when they exceed ecoff.
func Tabulate(mics, solos *MutationMICs, soloIDs []string, obs []Observation, ecoff float64) Tabulation {
	var t Tabulation

	m := mics.Count(ecoff)
	t.Solos = solos.Count(ecoff)
	t.Variants = RS{R: m.R + t.Solos.R, S: m.S + t.Solos.S}

	_, groups := groupByIsolate(obs)
	for _, id := range soloIDs {
		rows := groups[id]
		if distinctMutations(rows) <= 1 {
			continue
		}
		t.Minor.add(rows[0].MIC > MinorBreakpoint)
	}
	return t
}
