package scoring

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidInput is wrapped by every validation failure of the engine
var ErrInvalidInput = goerr.New("invalid scoring input")

// Context keys for error values
const (
	CompositeIDKey = "composite_id"
	PrefixKey      = "prefix"
	MemberKey      = "member"
)
