package policy

import (
	"fmt"
	"strings"
)

// DeriveFromConstraints maps recognized constraints to usage policies.
// Constraints with an unknown left operand, or durations that resolve to
// nothing, are skipped.
func DeriveFromConstraints(constraints []Constraint) []UsagePolicy {
	policies := make([]UsagePolicy, 0, len(constraints))
	for _, c := range constraints {
		if p, ok := fromConstraint(c); ok {
			policies = append(policies, p)
		}
	}
	return policies
}

func fromConstraint(c Constraint) (UsagePolicy, bool) {
	switch normalizeOperand(c.LeftOperand) {
	case OperandRole:
		return UsagePolicy{Type: TypeRole, TypeOfAccess: Restricted, Value: c.RightOperand}, true
	case OperandElapsedTime:
		return ParseDurationPolicy(c.RightOperand)
	case OperandPurpose:
		return UsagePolicy{Type: TypePurpose, TypeOfAccess: Restricted, Value: c.RightOperand}, true
	default:
		return UsagePolicy{}, false
	}
}

// normalizeOperand accepts both "elapsed-time" and "idsc:ELAPSED_TIME" spellings.
func normalizeOperand(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	op = strings.TrimPrefix(op, "idsc:")
	return strings.ReplaceAll(op, "_", "-")
}

// CompletePolicySet appends an unrestricted, empty policy for every non-custom
// type missing from policies.
func CompletePolicySet(policies []UsagePolicy) []UsagePolicy {
	for _, t := range Types {
		if t == TypeCustom {
			continue
		}
		if !hasType(policies, t) {
			policies = append(policies, UsagePolicy{Type: t, TypeOfAccess: Unrestricted, Value: ""})
		}
	}
	return policies
}

// DeriveCustomPolicy appends the custom policy: restricted with the extensible
// property's value when the custom key is present, unrestricted and empty otherwise.
func DeriveCustomPolicy(extensible map[string]string, policies []UsagePolicy) []UsagePolicy {
	if v, ok := extensible[CustomKey]; ok {
		return append(policies, UsagePolicy{Type: TypeCustom, TypeOfAccess: Restricted, Value: v})
	}
	return append(policies, UsagePolicy{Type: TypeCustom, TypeOfAccess: Unrestricted, Value: ""})
}

// Resolve builds the full policy set of a contract: derived, completed, plus custom.
func Resolve(constraints []Constraint, extensible map[string]string) []UsagePolicy {
	return DeriveCustomPolicy(extensible, CompletePolicySet(DeriveFromConstraints(constraints)))
}

// Normalize returns a caller supplied policy list with exactly one entry per
// type: the first restricted entry of each type wins and missing ones are
// filled as unrestricted.
func Normalize(policies []UsagePolicy) []UsagePolicy {
	out := make([]UsagePolicy, 0, len(Types))
	for _, t := range Types {
		for _, p := range policies {
			if p.Type == t && p.TypeOfAccess == Restricted {
				out = append(out, p)
				break
			}
		}
	}

	custom := map[string]string{}
	for _, p := range out {
		if p.Type == TypeCustom {
			custom[CustomKey] = p.Value
		}
	}
	out = withoutType(out, TypeCustom)
	return DeriveCustomPolicy(custom, CompletePolicySet(out))
}

// ToConstraints is the inverse of Resolve: restricted role, duration and
// purpose policies become constraints, a restricted custom policy becomes an
// extensible property.
func ToConstraints(policies []UsagePolicy) ([]Constraint, map[string]string, error) {
	constraints := make([]Constraint, 0, len(policies))
	extensible := map[string]string{}

	for _, p := range policies {
		if p.TypeOfAccess != Restricted || strings.TrimSpace(p.Value) == "" {
			continue
		}
		switch p.Type {
		case TypeRole:
			constraints = append(constraints, Constraint{LeftOperand: OperandRole, Operator: "eq", RightOperand: p.Value})
		case TypePurpose:
			constraints = append(constraints, Constraint{LeftOperand: OperandPurpose, Operator: "eq", RightOperand: p.Value})
		case TypeDuration:
			d, err := FormatDuration(p.Value, p.DurationUnit)
			if err != nil {
				return nil, nil, fmt.Errorf("duration policy: %w", err)
			}
			constraints = append(constraints, Constraint{LeftOperand: OperandElapsedTime, Operator: "lteq", RightOperand: d})
		case TypeCustom:
			extensible[CustomKey] = p.Value
		default:
			return nil, nil, fmt.Errorf("unknown policy type %q", p.Type)
		}
	}

	return constraints, extensible, nil
}

func hasType(policies []UsagePolicy, t Type) bool {
	for _, p := range policies {
		if p.Type == t {
			return true
		}
	}
	return false
}

func withoutType(policies []UsagePolicy, t Type) []UsagePolicy {
	out := policies[:0]
	for _, p := range policies {
		if p.Type != t {
			out = append(out, p)
		}
	}
	return out
}
