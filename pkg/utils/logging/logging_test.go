package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	gt.V(t, logging.From(context.Background())).Equal(logging.Default())
}

func TestWithAndFrom(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, slog.LevelInfo, logging.FormatJSON))
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Info("hello", "department", "FIN")

	var record map[string]any
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record)).Required()
	gt.V(t, record["msg"]).Equal("hello")
	gt.V(t, record["department"]).Equal("FIN")
}

func TestSecretIsRedacted(t *testing.T) {
	type credential struct {
		User  string
		Token string `masq:"secret"`
	}

	var buf bytes.Buffer
	logger := slog.New(logging.NewHandler(&buf, slog.LevelInfo, logging.FormatJSON))
	logger.Info("login", "cred", credential{User: "alice", Token: "s3cr3t-token"})

	gt.S(t, buf.String()).Contains("alice")
	gt.S(t, buf.String()).NotContains("s3cr3t-token")
}
