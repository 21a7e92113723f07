package persona

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jgoulah/personadash/pkg/models"
)

// Counts tallies households per persona, largest group first. Equal counts
// keep the order in which the personas first appear.
func Counts(labels []models.Persona) []models.PersonaCount {
	var counts []models.PersonaCount
	pos := make(map[models.Persona]int)

	for _, l := range labels {
		i, seen := pos[l]
		if !seen {
			i = len(counts)
			pos[l] = i
			counts = append(counts, models.PersonaCount{Persona: l})
		}
		counts[i].Households++
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Households > counts[b].Households
	})
	return counts
}

// WithCosts fills EstimatedCost on each count using a flat rate per kWh.
// A zero or negative rate leaves the counts untouched.
func WithCosts(counts []models.PersonaCount, labels []models.Persona, consumption []float64, ratePerKWh float64) []models.PersonaCount {
	if ratePerKWh <= 0 {
		return counts
	}

	rate := decimal.NewFromFloat(ratePerKWh)
	totals := make(map[models.Persona]decimal.Decimal)
	for i, l := range labels {
		totals[l] = totals[l].Add(decimal.NewFromFloat(consumption[i]).Mul(rate))
	}

	out := make([]models.PersonaCount, len(counts))
	for i, c := range counts {
		c.EstimatedCost = totals[c.Persona].StringFixed(2)
		out[i] = c
	}
	return out
}
