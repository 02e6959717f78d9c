package scoring

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
)

// Separator delimits every segment of a composite risk identifier
const Separator = "/"

// CompositeID is a decoded composite risk identifier: the shared prefix and
// the member sequence numbers in merge order.
type CompositeID struct {
	Prefix  string
	Members []string
}

// String encodes the identifier back into its textual form
func (c CompositeID) String() string {
	return c.Prefix + Separator + strings.Join(c.Members, Separator)
}

// IsMerged is true when the identifier spans more than one member
func (c CompositeID) IsMerged() bool {
	return len(c.Members) > 1
}

// PlainIDs reconstructs the plain identifier of each member
func (c CompositeID) PlainIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = c.Prefix + Separator + m
	}
	return ids
}

// CompositeCodec encodes and decodes composite identifiers with a fixed
// number of prefix segments.
type CompositeCodec struct {
	prefixSegments int
}

// NewCompositeCodec creates a codec whose prefix spans prefixSegments
// segments
func NewCompositeCodec(prefixSegments int) (*CompositeCodec, error) {
	if prefixSegments < 1 {
		return nil, goerr.Wrap(ErrInvalidInput, "prefix must have at least one segment", goerr.V("prefix_segments", prefixSegments))
	}
	return &CompositeCodec{prefixSegments: prefixSegments}, nil
}

// DefaultCompositeCodec returns the codec for two segment DEPARTMENT/YEAR
// prefixes such as FIN/2024/001/002. Three segment ids like A/B/C/001/002
// are rejected here; they need NewCompositeCodec(3), which the policy
// selects with prefix_segments = 3.
func DefaultCompositeCodec() *CompositeCodec {
	return &CompositeCodec{prefixSegments: 2}
}

// PrefixSegments returns the number of prefix segments
func (c *CompositeCodec) PrefixSegments() int {
	return c.prefixSegments
}

// Encode joins prefix and members. The caller is responsible for making sure
// all members really share the prefix.
func (c *CompositeCodec) Encode(prefix string, members []string) (string, error) {
	segments := strings.Split(prefix, Separator)
	if len(segments) != c.prefixSegments {
		return "", goerr.Wrap(ErrInvalidInput, "unexpected number of prefix segments",
			goerr.V(PrefixKey, prefix), goerr.V("expected", c.prefixSegments), goerr.V("actual", len(segments)))
	}
	for _, s := range segments {
		if s == "" {
			return "", goerr.Wrap(ErrInvalidInput, "empty prefix segment", goerr.V(PrefixKey, prefix))
		}
	}

	if len(members) == 0 {
		return "", goerr.Wrap(ErrInvalidInput, "composite id requires at least one member", goerr.V(PrefixKey, prefix))
	}
	for _, m := range members {
		if m == "" || strings.Contains(m, Separator) {
			return "", goerr.Wrap(ErrInvalidInput, "invalid member sequence", goerr.V(MemberKey, m))
		}
	}

	return CompositeID{Prefix: prefix, Members: members}.String(), nil
}

// Decode splits a composite identifier into prefix and members
func (c *CompositeCodec) Decode(id string) (CompositeID, error) {
	segments := strings.Split(id, Separator)
	if len(segments) < c.prefixSegments+1 {
		return CompositeID{}, goerr.Wrap(ErrInvalidInput, "composite id has too few segments",
			goerr.V(CompositeIDKey, id), goerr.V("expected_min", c.prefixSegments+1))
	}
	for _, s := range segments {
		if s == "" {
			return CompositeID{}, goerr.Wrap(ErrInvalidInput, "composite id has an empty segment", goerr.V(CompositeIDKey, id))
		}
	}

	members := make([]string, len(segments)-c.prefixSegments)
	copy(members, segments[c.prefixSegments:])
	return CompositeID{
		Prefix:  strings.Join(segments[:c.prefixSegments], Separator),
		Members: members,
	}, nil
}

// IsMerged counts separators: more than one member after the prefix means
// the identifier belongs to a consolidated risk. Malformed identifiers are
// never merged.
func (c *CompositeCodec) IsMerged(id string) bool {
	if strings.Count(id, Separator) <= c.prefixSegments {
		return false
	}
	_, err := c.Decode(id)
	return err == nil
}

// PlainID builds the identifier of a single, unmerged report
func (c *CompositeCodec) PlainID(prefix, member string) (string, error) {
	return c.Encode(prefix, []string{member})
}

// MemberResolution is the lookup result of one member of a composite id
type MemberResolution struct {
	Member  string
	PlainID string
	Report  *model.RiskReport
	Found   bool
}

// ReportLookup finds a report by its plain identifier
type ReportLookup func(plainID string) (*model.RiskReport, bool)

// ResolveMembers looks up every member of id. Missing reports are marked
// as not found instead of failing the resolution.
func ResolveMembers(id CompositeID, lookup ReportLookup) []MemberResolution {
	plainIDs := id.PlainIDs()
	resolved := make([]MemberResolution, len(id.Members))
	for i, member := range id.Members {
		resolved[i] = MemberResolution{
			Member:  member,
			PlainID: plainIDs[i],
		}
		if lookup == nil {
			continue
		}
		if report, ok := lookup(plainIDs[i]); ok && report != nil {
			resolved[i].Report = report
			resolved[i].Found = true
		}
	}
	return resolved
}
