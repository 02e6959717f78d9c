package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		sentinelError error
		wantMatch     bool
	}{
		{
			name:          "ErrConfigNotFound can be identified",
			err:           goerr.Wrap(config.ErrConfigNotFound, "failed to load config"),
			sentinelError: config.ErrConfigNotFound,
			wantMatch:     true,
		},
		{
			name:          "ErrInvalidScore can be identified through two wraps",
			err:           goerr.Wrap(goerr.Wrap(config.ErrInvalidScore, "bad likelihood"), "invalid config"),
			sentinelError: config.ErrInvalidScore,
			wantMatch:     true,
		},
		{
			name:          "ErrDuplicateID is not ErrMissingName",
			err:           goerr.Wrap(config.ErrDuplicateID, "duplicate"),
			sentinelError: config.ErrMissingName,
			wantMatch:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, errors.Is(tt.err, tt.sentinelError)).Equal(tt.wantMatch)
		})
	}
}
