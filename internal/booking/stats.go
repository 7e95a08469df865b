package booking

// Stats are the dashboard counters.  Total includes every booking, also
// those with a status outside the three known ones.
type Stats struct {
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// StatsFromCounts folds per-status counts (as returned by a GROUP BY) into Stats.
func StatsFromCounts(counts map[string]int) Stats {
	var s Stats
	for status, n := range counts {
		s.Total += n
		switch status {
		case StatusConfirmed:
			s.Confirmed += n
		case StatusPending:
			s.Pending += n
		case StatusCancelled:
			s.Cancelled += n
		}
	}
	return s
}

// CountStatuses tallies a list of statuses.
func CountStatuses(statuses []string) Stats {
	counts := make(map[string]int, 4)
	for _, st := range statuses {
		counts[st]++
	}
	return StatsFromCounts(counts)
}
