//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	AccessToken string
	PipelineID  string
	BinaryPath  string
	Verbose     bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		AccessToken: os.Getenv("HUBSPOT_ACCESS_TOKEN"),
		PipelineID:  os.Getenv("HUBSPOT_PIPELINE_ID"),
		BinaryPath:  getBinaryPath(),
		Verbose:     os.Getenv("HSCRM_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the hscrm binary
func getBinaryPath() string {
	if path := os.Getenv("HSCRM_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../hscrm",
		"./hscrm",
		"../hscrm",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "hscrm" // Fallback to PATH
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.AccessToken == "" {
		t.Skip("HUBSPOT_ACCESS_TOKEN not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("hscrm binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// SkipIfNoPipeline skips deal tests when no pipeline is configured
func (config *TestConfig) SkipIfNoPipeline(t *testing.T) {
	t.Helper()

	if config.PipelineID == "" {
		t.Skip("HUBSPOT_PIPELINE_ID not set, skipping deal integration test")
	}
}

// CommandRunner provides utilities for running hscrm commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes an hscrm command and returns output. The token and pipeline
// reach the binary through the environment.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HUBSPOT_ACCESS_TOKEN="+runner.config.AccessToken,
		"HUBSPOT_PIPELINE_ID="+runner.config.PipelineID,
	)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a command with JSON output and decodes the result into v
func (runner *CommandRunner) RunJSON(v interface{}, args ...string) error {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, stderr)
	}

	err = json.Unmarshal([]byte(stdout), v)
	if err != nil {
		return fmt.Errorf("decoding output %q: %w", stdout, err)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// GenerateTestEmail creates a unique contact email
func GenerateTestEmail(prefix string) string {
	return GenerateTestName(prefix) + "@hscrm-integration.example.com"
}

// CleanupRecord attempts to delete a test record
func (runner *CommandRunner) CleanupRecord(recordType, id string) {
	if id == "" {
		return
	}

	stdout, stderr, err := runner.Run(recordType, "delete", id)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", recordType, id, stdout, stderr)
	}
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
