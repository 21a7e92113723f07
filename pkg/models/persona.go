package models

import "time"

// Persona is the behavioral label derived from a household's consumption
type Persona string

const (
	Saver        Persona = "Saver"
	Moderate     Persona = "Moderate"
	Overconsumer Persona = "Overconsumer"
)

// PersonaCount is the number of households carrying one persona
type PersonaCount struct {
	Persona       Persona `json:"persona"`
	Households    int     `json:"households"`
	EstimatedCost string  `json:"estimated_cost,omitempty"` // Decimal string, only when a rate is configured
}

// ClusterCount is the number of households sharing a pre-assigned cluster label
type ClusterCount struct {
	Cluster    string `json:"cluster"`
	Households int    `json:"households"`
}

// Summary describes one classified dataset
type Summary struct {
	RunID           string         `json:"run_id"`
	Source          string         `json:"source"`
	Records         int            `json:"records"`
	Classified      bool           `json:"classified"`
	MeanConsumption float64        `json:"mean_consumption"`
	Personas        []PersonaCount `json:"personas,omitempty"`
	Clusters        []ClusterCount `json:"clusters,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// Households returns the count for a persona, or 0 if it does not occur
func (s Summary) Households(p Persona) int {
	for _, c := range s.Personas {
		if c.Persona == p {
			return c.Households
		}
	}
	return 0
}
