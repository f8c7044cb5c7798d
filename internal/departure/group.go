package departure

// LineGroup holds the departures of one line.
type LineGroup struct {
	Line       string      `json:"line"`
	Departures []Departure `json:"departures"`
}

// GroupByLine groups departures by line. Groups appear in the order their line
// is first seen and keep the input order within each group.
func GroupByLine(deps []Departure) []LineGroup {
	index := make(map[string]int)
	var groups []LineGroup
	for _, d := range deps {
		i, ok := index[d.Line]
		if !ok {
			i = len(groups)
			index[d.Line] = i
			groups = append(groups, LineGroup{Line: d.Line})
		}
		groups[i].Departures = append(groups[i].Departures, d)
	}
	return groups
}
