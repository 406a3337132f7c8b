package types

import (
	"sort"
	"strings"
	"time"
)

type Timing struct {
	Start time.Time
	End   time.Time
}

func (t *Timing) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

type TimingMap map[string]Timing

// Track records the start time of the named stage and returns a func which records the end time
func (m TimingMap) Track(name string) func() {
	start := time.Now()
	return func() {
		m[name] = Timing{Start: start, End: time.Now()}
	}
}

func (m TimingMap) String() string {
	var sb strings.Builder
	sb.WriteString("Timing:\n")
	// get max label length
	maxLabelLen := 0
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
		if len(k) > maxLabelLen {
			maxLabelLen = len(k)
		}
	}
	// order by start time
	sort.Slice(keys, func(i, j int) bool {
		return m[keys[i]].Start.Before(m[keys[j]].Start)
	})

	for _, k := range keys {
		v := m[k]
		sb.WriteString(k)
		sb.WriteString(":")
		// pad label to max length
		for i := len(k); i < maxLabelLen; i++ {
			sb.WriteString(" ")
		}
		sb.WriteString(v.Duration().String())
		sb.WriteString("\n")
	}
	return sb.String()
}
