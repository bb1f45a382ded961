package titlematch

// Report aggregates the outcome of one resolution pass.
type Report struct {
	Targets     int
	Resolved    int
	Unresolved  int
	PerStrategy map[string]int
}

// Summarize counts assignments per tier. total is the number of targets that
// were presented to the resolver.
func Summarize(total int, assignments []Assignment) Report {
	rep := Report{
		Targets:     total,
		Resolved:    len(assignments),
		PerStrategy: make(map[string]int),
	}
	for _, a := range assignments {
		tierName := a.Tier
		if tierName == "" {
			tierName = a.Strategy
		}
		rep.PerStrategy[tierName]++
	}
	rep.Unresolved = total - rep.Resolved
	if rep.Unresolved < 0 {
		rep.Unresolved = 0
	}
	return rep
}

// MatchRate returns the resolved share of targets in [0,1].
func (r Report) MatchRate() float64 {
	if r.Targets == 0 {
		return 0
	}
	return float64(r.Resolved) / float64(r.Targets)
}
