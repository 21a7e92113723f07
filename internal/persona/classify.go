// Package persona labels households relative to the mean consumption of the
// dataset they were loaded with.
package persona

import (
	"fmt"

	"github.com/jgoulah/personadash/pkg/models"
)

// Threshold ratios applied to the dataset mean
const (
	SaverRatio        = 0.8
	OverconsumerRatio = 1.2
)

// EmptyDatasetError is returned when there are no records to take a mean over
type EmptyDatasetError struct {
	Source string
}

func (e *EmptyDatasetError) Error() string {
	if e.Source == "" {
		return "dataset has no records"
	}
	return fmt.Sprintf("dataset %s has no records", e.Source)
}

// Classification is the result of labeling one dataset
type Classification struct {
	Mean   float64
	Labels []models.Persona // One per input value, same order
}

// Classify computes the population mean of consumption and labels every value
// against it. The labels depend on the whole slice: adding or removing values
// moves the mean and may relabel the others.
func Classify(consumption []float64) (*Classification, error) {
	if len(consumption) == 0 {
		return nil, &EmptyDatasetError{}
	}

	var sum float64
	for _, v := range consumption {
		sum += v
	}
	mean := sum / float64(len(consumption))

	labels := make([]models.Persona, len(consumption))
	for i, v := range consumption {
		labels[i] = Label(v, mean)
	}

	return &Classification{Mean: mean, Labels: labels}, nil
}

// Label applies the threshold rule to a single value. Both thresholds belong
// to Moderate.
func Label(consumption, mean float64) models.Persona {
	if consumption < SaverRatio*mean {
		return models.Saver
	}
	if consumption > OverconsumerRatio*mean {
		return models.Overconsumer
	}
	return models.Moderate
}

// Strings returns the labels as plain strings for table and grouping use
func (c *Classification) Strings() []string {
	out := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		out[i] = string(l)
	}
	return out
}
