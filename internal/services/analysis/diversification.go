package analysis

import (
	"sort"
	"strings"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/models"
)

const (
	topHoldingsLimit = 5

	unclassifiedSector = "Unclassified"
	otherAssetClass    = "Other"
	placeholderName    = "N/A"
)

// AssetClass derives an asset class from a fund category by taking its first
// word, e.g. "Equity Scheme - Large Cap Fund" is "Equity". Multi-word classes
// such as "Fund of Funds" are not recognised.
func AssetClass(category string) string {
	fields := strings.Fields(category)
	if len(fields) == 0 {
		return otherAssetClass
	}
	return fields[0]
}

func sectorOf(category string) string {
	if c := strings.TrimSpace(category); c != "" {
		return c
	}
	return unclassifiedSector
}

// Diversification reports how current value is spread across sectors, asset
// classes and individual holdings. Percentages are of total current value,
// rounded to 2 dp, so a group's shares may sum to 100 ± 0.01 per group.
// An empty or zero-valued portfolio yields "N/A" placeholders and empty lists.
func Diversification(valued []models.ValuedHolding) models.DiversificationReport {
	report := models.DiversificationReport{
		SectorConcentration: models.SectorConcentration{
			TopSector: models.GroupShare{Name: placeholderName},
			Sectors:   []models.GroupAllocation{},
		},
		AssetClassConcentration: models.AssetClassConcentration{
			TopClass: models.GroupShare{Name: placeholderName},
			Classes:  []models.GroupAllocation{},
		},
		TopHoldings: []models.TopHolding{},
	}

	total := 0.0
	for _, vh := range valued {
		total += vh.CurrentValue
	}
	if len(valued) == 0 || !(total > 0) {
		return report
	}

	sectors := allocate(valued, total, func(vh models.ValuedHolding) string { return sectorOf(vh.Category) })
	classes := allocate(valued, total, func(vh models.ValuedHolding) string { return AssetClass(vh.Category) })

	report.SectorConcentration.Sectors = sectors
	report.SectorConcentration.TopSector = models.GroupShare{Name: sectors[0].Name, Percentage: sectors[0].Percentage}
	report.AssetClassConcentration.Classes = classes
	report.AssetClassConcentration.TopClass = models.GroupShare{Name: classes[0].Name, Percentage: classes[0].Percentage}
	report.TopHoldings = topHoldings(valued, total, topHoldingsLimit)

	return report
}

// allocate sums current value per group and sorts groups by share, largest first.
func allocate(valued []models.ValuedHolding, total float64, groupOf func(models.ValuedHolding) string) []models.GroupAllocation {
	index := make(map[string]int)
	var groups []models.GroupAllocation

	for _, vh := range valued {
		name := groupOf(vh)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, models.GroupAllocation{Name: name})
		}
		groups[i].Value += vh.CurrentValue
	}

	for i := range groups {
		groups[i].Percentage = common.Round2(groups[i].Value / total * 100)
	}

	// ordered by value so rounding cannot reorder near-equal groups
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Value != groups[j].Value {
			return groups[i].Value > groups[j].Value
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func topHoldings(valued []models.ValuedHolding, total float64, limit int) []models.TopHolding {
	ranked := make([]models.TopHolding, 0, len(valued))
	for _, vh := range valued {
		ranked = append(ranked, models.TopHolding{
			SchemeCode: vh.SchemeCode,
			Name:       vh.DisplayName(),
			Value:      vh.CurrentValue,
			Percentage: common.Round2(vh.CurrentValue / total * 100),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
