package policy

// Type is the kind of constraint a usage policy expresses.
type Type string

const (
	TypeRole     Type = "ROLE"
	TypeDuration Type = "DURATION"
	TypePurpose  Type = "PURPOSE"
	TypeCustom   Type = "CUSTOM"
)

// Types lists every policy type in canonical order.
var Types = []Type{TypeRole, TypeDuration, TypePurpose, TypeCustom}

// Access tells whether a policy actually restricts usage.
type Access string

const (
	Restricted   Access = "RESTRICTED"
	Unrestricted Access = "UNRESTRICTED"
)

// DurationUnit is the unit of a duration policy value.
type DurationUnit string

const (
	Year   DurationUnit = "YEAR"
	Month  DurationUnit = "MONTH"
	Day    DurationUnit = "DAY"
	Hour   DurationUnit = "HOUR"
	Minute DurationUnit = "MINUTE"
	Second DurationUnit = "SECOND"
)

// UsagePolicy is one typed usage constraint attached to an asset.
type UsagePolicy struct {
	Type         Type         `json:"type"`
	TypeOfAccess Access       `json:"type_of_access"`
	Value        string       `json:"value"`
	DurationUnit DurationUnit `json:"duration_unit,omitempty"`
}

// Constraint is a contract constraint expression as the connector understands it.
type Constraint struct {
	LeftOperand  string `json:"left_operand"`
	Operator     string `json:"operator"`
	RightOperand string `json:"right_operand"`
}

// Left operands of recognized constraints.
const (
	OperandRole        = "role"
	OperandElapsedTime = "elapsed-time"
	OperandPurpose     = "purpose"
)

// CustomKey is the extensible-property key carrying a custom policy value.
const CustomKey = string(TypeCustom)
