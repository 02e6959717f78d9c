package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskscope/pkg/utils/logging"
)

const testRegister = `
[[report]]
composite_id = "FIN/2024/001"
name = "Vendor payment fraud"
department = "FIN"

  [[report.assessment]]
  category = "Financial"
  likelihood = 4
  impact = 4

  [[report.assessment]]
  category = "Compliance"
  likelihood = 2
  impact = 3

[[report]]
composite_id = "FIN/2024/002"
name = "Vendor payment frauds"
department = "FIN"

  [[report.assessment]]
  category = "Financial"
  likelihood = 4
  impact = 3

  [[report.assessment]]
  category = "Compliance"
  likelihood = 1
  impact = 1
`

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	var buf bytes.Buffer
	app := newApp("test", &buf)
	err := app.Run(context.Background(), append([]string{"riskscope", "--no-color", "--log-level", "error"}, args...))
	return buf.String(), err
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestRate(t *testing.T) {
	out, err := runApp(t, "rate", "-e", "0.5", "Financial:4:4", "Compliance:Possible:Major", "Legal")
	gt.NoError(t, err).Required()

	gt.S(t, out).Contains("Financial")
	gt.S(t, out).Contains("Critical -> High")
	gt.S(t, out).Contains("Not Assessed")
	gt.S(t, out).Contains("general inherent score: 22.00")
	gt.S(t, out).Contains("general residual score: 11.00")
	gt.S(t, out).Contains("average rating: 11.00 (High)")
}

func TestRate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no assessment", args: []string{"rate"}},
		{name: "bad likelihood", args: []string{"rate", "Financial:9:1"}},
		{name: "bad control effectiveness", args: []string{"rate", "-e", "1.5", "Financial:1:1"}},
		{name: "duplicate category", args: []string{"rate", "Financial:1:1", "Financial:2:2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			gt.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	path := writeTestFile(t, "register.toml", testRegister)

	out, err := runApp(t, "validate", "--register", path)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("2 register reports OK")

	bad := writeTestFile(t, "bad.toml", `
[[report]]
name = "no department"
  [[report.assessment]]
  category = "Financial"
`)
	_, err = runApp(t, "validate", "--register", bad)
	gt.Error(t, err)
}

func TestImport_Bolt(t *testing.T) {
	register := writeTestFile(t, "register.toml", testRegister)
	db := filepath.Join(t.TempDir(), "riskscope.db")

	out, err := runApp(t, "import", "--register", register, "--repository-backend", "bolt", "--bolt-path", db)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("imported 2 reports")

	out, err = runApp(t, "analyze", "--repository-backend", "bolt", "--bolt-path", db)
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("FIN/2024/001")
	gt.S(t, out).Contains("FIN/2024/002")

	// Same composite ids again are rejected
	_, err = runApp(t, "import", "--register", register, "--repository-backend", "bolt", "--bolt-path", db)
	gt.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	register := writeTestFile(t, "register.toml", testRegister)

	out, err := runApp(t, "analyze", "--register", register)
	gt.NoError(t, err).Required()

	gt.S(t, out).Contains("Category groups")
	gt.S(t, out).Contains("Merge candidates")
	gt.S(t, out).Contains("CATEGORY_OVERLAP")
	gt.S(t, out).Contains("Department health")

	lines := strings.Split(out, "\n")
	var healthLine string
	for _, l := range lines {
		if strings.HasPrefix(l, "FIN ") {
			healthLine = l
		}
	}
	gt.S(t, healthLine).Contains("Needs Attention")
}
