// Package aggregate groups classified records into the shapes the charts draw.
package aggregate

// Group is one category and its values in original row order
type Group struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// GroupBy collects values under their key. Groups are returned in the order
// their key first appears, so identical input always yields identical output.
// Only the first min(len(keys), len(values)) rows are considered.
func GroupBy(keys []string, values []float64) []Group {
	n := min(len(keys), len(values))

	var groups []Group
	pos := make(map[string]int)
	for i := 0; i < n; i++ {
		g, seen := pos[keys[i]]
		if !seen {
			g = len(groups)
			pos[keys[i]] = g
			groups = append(groups, Group{Key: keys[i]})
		}
		groups[g].Values = append(groups[g].Values, values[i])
	}
	return groups
}

// Pair is one spoke of a radial chart
type Pair struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Radar returns the first n (category, value) pairs in input order. Shorter
// input yields fewer pairs.
func Radar(categories []string, values []float64, n int) []Pair {
	n = min(n, len(categories), len(values))
	if n <= 0 {
		return nil
	}

	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{Category: categories[i], Value: values[i]}
	}
	return pairs
}

// Count is the number of rows carrying a key
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CountBy tallies keys in first-appearance order
func CountBy(keys []string) []Count {
	var counts []Count
	pos := make(map[string]int)
	for _, k := range keys {
		i, seen := pos[k]
		if !seen {
			i = len(counts)
			pos[k] = i
			counts = append(counts, Count{Key: k})
		}
		counts[i].Count++
	}
	return counts
}
