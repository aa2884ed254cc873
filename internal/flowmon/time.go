package flowmon

import (
	"fmt"
	"strconv"
	"strings"
)

// timeUnits maps the unit suffixes ns3::Time prints to nanoseconds. Longer
// suffixes come first so that "ms" is not read as "s".
var timeUnits = []struct {
	suffix string
	nanos  float64
}{
	{"min", 60e9},
	{"fs", 1e-6},
	{"ps", 1e-3},
	{"ns", 1},
	{"us", 1e3},
	{"ms", 1e6},
	{"s", 1e9},
	{"h", 3600e9},
	{"d", 86400e9},
	{"y", 365 * 86400e9},
}

// ParseTime decodes a FlowMonitor time attribute such as "+1.5e+09ns" or
// "-3.2ms" and returns its value in nanoseconds.
func ParseTime(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, u := range timeUnits {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		if num == "" {
			return 0, fmt.Errorf("time %q has no value", s)
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("time %q: %w", s, err)
		}
		return v * u.nanos, nil
	}
	return 0, fmt.Errorf("time %q has no unit suffix", s)
}
