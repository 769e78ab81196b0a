package marketdata

import "github.com/carteira-app/carteira/internal/model"

// catalog is the fixed set of benchmarks an evolution chart can be compared to.
var catalog = []model.Benchmark{
	{Name: "IBOV", Label: "Ibovespa", Symbol: "^BVSP", Source: model.SourceYahoo},
	{Name: "SPX", Label: "S&P 500", Symbol: "^GSPC", Source: model.SourceYahoo},
	{Name: "SMLL", Label: "Small Caps (SMAL11)", Symbol: "SMAL11.SA", Source: model.SourceYahoo},
	{Name: "IDIV", Label: "Dividendos (IDIV11)", Symbol: "IDIV11.SA", Source: model.SourceYahoo},
	{Name: "IVVB11", Label: "IVVB11", Symbol: "IVVB11.SA", Source: model.SourceYahoo},
	{Name: "CDI", Label: "CDI", Symbol: "SGS-12", Source: model.SourceBCB},
}

// Lookup finds a catalog benchmark by name or label, case-insensitively.
func Lookup(name string) (model.Benchmark, bool) {
	for _, b := range catalog {
		if b.Matches(name) {
			return b, true
		}
	}
	return model.Benchmark{}, false
}
