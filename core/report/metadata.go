package report

import (
	"strings"

	"twin-sync/core/policy"
)

// Metadata is the sharing configuration shared by every row of a batch.
type Metadata struct {
	// BPNNumbers are the business partner numbers granted access.
	BPNNumbers []string `json:"bpn_numbers"`

	// TypeOfAccess is "restricted" or "unrestricted".
	TypeOfAccess string `json:"type_of_access"`

	// UsagePolicies are the usage policy templates for the batch.
	UsagePolicies []policy.UsagePolicy `json:"usage_policies"`
}

// Restricted reports whether access is limited to BPNNumbers.
func (m Metadata) Restricted() bool {
	return strings.EqualFold(strings.TrimSpace(m.TypeOfAccess), string(policy.Restricted))
}
