package domain_test

import (
	"testing"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSecurityReport_Summary(t *testing.T) {
	assert.Equal(t, "Script passed security validation",
		domain.SecurityReport{Status: domain.ValidationPassed}.Summary())
	assert.Equal(t, "Security issues found: rm -rf /, curl | sh",
		domain.SecurityReport{Status: domain.ValidationFailed, Threats: []string{"rm -rf /", "curl | sh"}}.Summary())
	assert.Equal(t, "Security issues found",
		domain.SecurityReport{Status: domain.ValidationFailed}.Summary())
	assert.Equal(t, "Security validation completed",
		domain.SecurityReport{Status: domain.ValidationCompleted}.Summary())
}

func TestParseMetrics(t *testing.T) {
	raw := `# HELP nix_mox_script_duration_seconds Script run time
# TYPE nix_mox_script_duration_seconds gauge
nix_mox_script_duration_seconds{script="setup nu"} 1.5
nix_mox_runs_total 3 1700000000
# a stray comment
garbage{unterminated 1
`
	samples := domain.ParseMetrics(raw)
	assert.Equal(t, []domain.MetricSample{
		{
			Name:  `nix_mox_script_duration_seconds{script="setup nu"}`,
			Value: "1.5",
			Help:  "Script run time",
			Type:  "gauge",
		},
		{Name: "nix_mox_runs_total", Value: "3"},
	}, samples)
}

func TestRunResult_Success(t *testing.T) {
	assert.True(t, domain.RunResult{}.Success())
	assert.False(t, domain.RunResult{ExitCode: 2}.Success())
}
