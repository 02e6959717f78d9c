package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// Department is the owning unit of a risk report. It forms the first
// segment of composite risk identifiers, so it can never contain '/'.
type Department string

var departmentPattern = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

// Validate checks if the Department is valid
func (d Department) Validate() error {
	if d == "" {
		return goerr.New("department cannot be empty")
	}
	if !departmentPattern.MatchString(string(d)) {
		return goerr.New("department must be uppercase alphanumeric with hyphens", goerr.V("department", d))
	}
	return nil
}

// String returns the string representation of Department
func (d Department) String() string {
	return string(d)
}
