package combinatorial

import "fmt"

// ParseDependencyBehavior parses the CRD/CLI-facing behavior name into a
// DependencyBehavior, defaulting an empty string to Lowest (spec.md §4.F.3).
func ParseDependencyBehavior(s string) (DependencyBehavior, error) {
	switch s {
	case "", "Lowest":
		return Lowest, nil
	case "HighestPatch":
		return HighestPatch, nil
	case "HighestMinor":
		return HighestMinor, nil
	case "Highest":
		return Highest, nil
	case "Ignore":
		return Ignore, nil
	default:
		return Lowest, fmt.Errorf("combinatorial: unknown dependency behavior %q", s)
	}
}
