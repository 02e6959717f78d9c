package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// CategoryID is the stable key of a policy category. Reports refer to
// categories by display name; the id only identifies the [[category]]
// table in the scoring policy.
type CategoryID string

var categoryIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate requires a lowercase slug such as "supply-chain"
func (c CategoryID) Validate() error {
	switch {
	case c == "":
		return goerr.New("category id is required")
	case !categoryIDPattern.MatchString(string(c)):
		return goerr.New("category id must be a lowercase slug", goerr.V("category_id", string(c)))
	}
	return nil
}

func (c CategoryID) String() string {
	return string(c)
}
