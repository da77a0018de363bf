package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var durationPattern = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// durationUnits is the evaluation order of the pattern's capture groups.
var durationUnits = []DurationUnit{Year, Month, Day, Hour, Minute, Second}

// ParseDurationPolicy turns an ISO-8601 style duration (e.g. "P0Y0M3DT0H0M0S")
// into a restricted duration policy.
//
// Components are evaluated in the order year, month, day, hour, minute, second
// and the first non-zero one wins; later components are dropped. It returns
// false when every component is zero, a component overflows int or the input
// is not a duration.
func ParseDurationPolicy(duration string) (UsagePolicy, bool) {
	m := durationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(duration)))
	if m == nil {
		return UsagePolicy{}, false
	}

	values := make([]int, len(durationUnits))
	for i := range durationUnits {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return UsagePolicy{}, false
		}
		values[i] = n
	}

	for i, unit := range durationUnits {
		if values[i] == 0 {
			continue
		}
		return UsagePolicy{
			Type:         TypeDuration,
			TypeOfAccess: Restricted,
			Value:        strconv.Itoa(values[i]),
			DurationUnit: unit,
		}, true
	}

	return UsagePolicy{}, false
}

// FormatDuration renders a single-unit duration in the full
// "P<y>Y<m>M<d>DT<h>H<m>M<s>S" form expected by the connector.
func FormatDuration(value string, unit DurationUnit) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid duration value %q", value)
	}

	parts := make([]int, len(durationUnits))
	found := false
	for i, u := range durationUnits {
		if u == unit {
			parts[i] = n
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("invalid duration unit %q", unit)
	}

	return fmt.Sprintf("P%dY%dM%dDT%dH%dM%dS", parts[0], parts[1], parts[2], parts[3], parts[4], parts[5]), nil
}
