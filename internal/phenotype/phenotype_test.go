package phenotype

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-amr/internal/vcf"
)

func TestParseMIC(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.25", 0.25},
		{"8", 8},
		{">8", 8},
		{"<=0.06", 0.06},
		{" 2 ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMIC(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	for _, bad := range []string{"", "NA", ">>=1"} {
		_, err := ParseMIC(bad)
		var me *MICError
		assert.ErrorAs(t, err, &me, bad)
	}

	got, err := ParseMICs([]string{"1", ">2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got)
	_, err = ParseMICs([]string{"1", "x"})
	assert.Error(t, err)
}

func TestParseSamples(t *testing.T) {
	tsv := "# phenotypes\nUNIQUEID\tPHENOTYPE\tMETHOD_MIC\niso1\tr\t>8\n\niso2\tS\t0.25\n"
	samples, err := ParseSamples(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, Sample{UniqueID: "iso1", Phenotype: "R", MethodMIC: ">8"}, samples["iso1"])

	csv := "METHOD_MIC,UNIQUEID,DRUG,PHENOTYPE\r\n0.5,iso3,RIF,S\r\n"
	samples, err = ParseSamples(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Sample{UniqueID: "iso3", Phenotype: "S", MethodMIC: "0.5"}, samples["iso3"])
}

func TestParseSamples_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"empty", "", 0},
		{"missing column", "UNIQUEID\tPHENOTYPE\n", 1},
		{"short line", "UNIQUEID\tPHENOTYPE\tMETHOD_MIC\niso1\tR\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSamples(strings.NewReader(tt.input))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestJoin(t *testing.T) {
	samples := map[string]Sample{
		"iso1": {UniqueID: "iso1", Phenotype: "R", MethodMIC: ">8"},
		"iso2": {UniqueID: "iso2", Phenotype: "S", MethodMIC: "bad"},
	}
	rows := []*vcf.Row{
		{UniqueID: "iso1", Gene: "rpoB", Mutation: "450SL"},
		{UniqueID: "iso9", Gene: "rpoB", Mutation: "450SL"},
	}

	obs, dropped, err := Join(rows, samples)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, obs, 1)
	assert.Equal(t, Observation{UniqueID: "iso1", Gene: "rpoB", Mutation: "450SL", Phenotype: "R", MethodMIC: ">8", MIC: 8}, obs[0])

	_, _, err = Join([]*vcf.Row{{UniqueID: "iso2"}}, samples)
	var me *MICError
	assert.ErrorAs(t, err, &me)
}

func obs(id, gene, mutation, phenotype string, mic float64) Observation {
	return Observation{UniqueID: id, Gene: gene, Mutation: mutation, Phenotype: phenotype, MIC: mic}
}

func fixture() []Observation {
	return []Observation{
		obs("iso1", "rpoB", "450SL", "R", 8),
		obs("iso2", "rpoB", "450SL", "S", 0.25),
		obs("iso2", "rpoB", "435DV", "S", 0.25),
		obs("iso3", "rpoB", "450SL", "R", 4),
		obs("iso4", "katG", "315ST", "S", 0.06),
		obs("iso5", "rpoB", "450SL", "R", 16),
		obs("iso5", "rpoB", "450SL", "R", 16),
	}
}

func TestIsolateTable(t *testing.T) {
	table := IsolateTable(fixture(), []string{"rpoB", "katG"})
	assert.Equal(t, []CountRow{
		{Name: "Total", R: 3, S: 2, Total: 5},
		{Name: "rpoB", R: 3, S: 1, Total: 4},
		{Name: "katG", R: 0, S: 1, Total: 1},
	}, table)
}

func TestVariantTable(t *testing.T) {
	table := VariantTable(fixture(), []string{"rpoB", "katG", "embB"})
	assert.Equal(t, []CountRow{
		{Name: "Total", R: 4, S: 3, Total: 7},
		{Name: "rpoB", R: 4, S: 2, Total: 6},
		{Name: "katG", R: 0, S: 1, Total: 1},
		{Name: "embB", R: 0, S: 0, Total: 0},
	}, table)
}

func TestExtractSolos(t *testing.T) {
	solos, ids := ExtractSolos("rpoB", fixture())
	assert.Equal(t, []string{"iso1", "iso3", "iso5"}, ids)
	assert.Equal(t, []string{"450SL"}, solos.Mutations())
	assert.Equal(t, []float64{8, 4, 16}, solos.MICs("450SL"))

	solos, ids = ExtractSolos("katG", fixture())
	assert.Equal(t, []string{"iso4"}, ids)
	assert.Equal(t, 1, solos.Len())
}

func TestExtractMICs(t *testing.T) {
	data := fixture()
	_, ids := ExtractSolos("rpoB", data)

	mics := ExtractMICs("rpoB", data, DefaultThreshold, ids)
	assert.Equal(t, []string{"450SL"}, mics.Mutations())
	assert.Equal(t, []float64{0.25}, mics.MICs("450SL"))

	mics = ExtractMICs("rpoB", data, 1, nil)
	assert.Equal(t, []string{"450SL", "435DV"}, mics.Mutations())
	assert.Len(t, mics.MICs("450SL"), 5)
}

func TestTabulate(t *testing.T) {
	data := fixture()
	solos, ids := ExtractSolos("rpoB", data)
	mics := ExtractMICs("rpoB", data, DefaultThreshold, ids)

	tab := Tabulate(mics, solos, ids, data, 1.0)
	assert.Equal(t, RS{R: 3, S: 1}, tab.Variants)
	assert.Equal(t, RS{R: 3, S: 0}, tab.Solos)
	assert.Equal(t, RS{}, tab.Minor)

	// iso3 also carries a katG variant in the wider table.
	wider := append(data, obs("iso3", "katG", "315ST", "R", 4))
	tab = Tabulate(mics, solos, ids, wider, 1.0)
	assert.Equal(t, RS{R: 1, S: 0}, tab.Minor)

	tab = Tabulate(mics, solos, ids, data, 10)
	assert.Equal(t, RS{R: 1, S: 2}, tab.Solos)
	assert.Equal(t, RS{R: 1, S: 3}, tab.Variants)
}
