package trend

import (
	"sort"
	"time"

	"ecommerce-trend-lab/internal/domain"
)

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dayRange lists every UTC day from the start day to the end day inclusive.
func dayRange(period domain.Period) []time.Time {
	start := dayOf(period.Start)
	end := dayOf(period.End)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// dayIndex maps each day to its position in days.
func dayIndex(days []time.Time) map[time.Time]int {
	idx := make(map[time.Time]int, len(days))
	for i, d := range days {
		idx[d] = i
	}
	return idx
}

// dailyAggregate groups values by UTC day in ascending order. Days without
// values are absent.
type dailyAggregate struct {
	sums   map[time.Time]float64
	counts map[time.Time]int
}

func newDailyAggregate() *dailyAggregate {
	return &dailyAggregate{
		sums:   make(map[time.Time]float64),
		counts: make(map[time.Time]int),
	}
}

func (d *dailyAggregate) add(at time.Time, v float64) {
	day := dayOf(at)
	d.sums[day] += v
	d.counts[day]++
}

func (d *dailyAggregate) days() []time.Time {
	out := make([]time.Time, 0, len(d.sums))
	for day := range d.sums {
		out = append(out, day)
	}
	sortTimes(out)
	return out
}

// sumPoints returns daily sums.
func (d *dailyAggregate) sumPoints() []domain.SeriesPoint {
	days := d.days()
	out := make([]domain.SeriesPoint, len(days))
	for i, day := range days {
		out[i] = domain.SeriesPoint{Date: day, Value: d.sums[day]}
	}
	return out
}

// meanPoints returns daily means.
func (d *dailyAggregate) meanPoints() []domain.SeriesPoint {
	days := d.days()
	out := make([]domain.SeriesPoint, len(days))
	for i, day := range days {
		out[i] = domain.SeriesPoint{Date: day, Value: d.sums[day] / float64(d.counts[day])}
	}
	return out
}

// forwardFill reindexes observed points over days, carrying the last known
// value across gaps. Days before the first observation are left unset.
func forwardFill(observed []domain.SeriesPoint, days []time.Time) []*float64 {
	values := make(map[time.Time]float64, len(observed))
	for _, p := range observed {
		values[p.Date] = p.Value
	}

	out := make([]*float64, len(days))
	var last *float64
	for i, day := range days {
		if v, ok := values[day]; ok {
			v := v
			last = &v
		}
		if last != nil {
			v := *last
			out[i] = &v
		}
	}
	return out
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
