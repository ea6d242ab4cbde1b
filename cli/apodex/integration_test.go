//go:build integration

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/apodex/test/testutil"
)

func buildTestBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "apodex")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cli/apodex")
	cmd.Dir = filepath.Clean(filepath.Join("..", ".."))

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build test binary: %s", string(output))

	return binaryPath
}

type cliTest struct {
	name           string
	args           []string
	expectedOutput string
	expectedError  string
	check          func(t *testing.T, outputDir string)
}

func runCLITest(t *testing.T, binaryPath, endpoint string, test cliTest) {
	t.Helper()

	t.Run(test.name, func(t *testing.T) {
		outputDir := t.TempDir()
		configPath := testutil.SetupTestConfig(t, endpoint, outputDir)

		cmd := exec.Command(binaryPath, append([]string{"--config", configPath}, test.args...)...)
		var stdout, stderr strings.Builder
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		cmd.Env = append(os.Environ(), "NASA_API_KEY=", "APODEX_OUTPUT_DIR=", "APODEX_API_ENDPOINT=")

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if test.expectedError != "" {
				require.Error(t, err, "expected error but got none")
				assert.Contains(t, stderr.String(), test.expectedError)
			} else {
				assert.NoError(t, err, "unexpected error: %v\nstderr: %s", err, stderr.String())
			}
			if test.expectedOutput != "" {
				assert.Contains(t, stdout.String(), test.expectedOutput)
			}
			if test.check != nil {
				test.check(t, outputDir)
			}
		case <-time.After(30 * time.Second):
			t.Fatal("Test timed out after 30 seconds")
		}
	})
}

func TestCLIIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	server := testutil.NewAPODServer(t)
	server.AddImage("2020-03-01", []byte("march"))
	server.AddImage("2021-01-01", []byte("january"))

	binaryPath := buildTestBinary(t)

	tests := []cliTest{
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "apodex downloads NASA Astronomy Pictures of the Day",
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedOutput: "apodex version",
		},
		{
			name:           "export default date",
			args:           []string{"export"},
			expectedOutput: "apod-export-0.jpg: 5 bytes",
			check: func(t *testing.T, outputDir string) {
				data, err := os.ReadFile(filepath.Join(outputDir, "apod-export-0.jpg"))
				require.NoError(t, err)
				assert.Equal(t, "march", string(data))
			},
		},
		{
			name:           "export with one bad date",
			args:           []string{"export", "2021-01-01", "B"},
			expectedOutput: "API Key: TEST_KEY_0...",
			expectedError:  "one or more items failed",
			check: func(t *testing.T, outputDir string) {
				assert.FileExists(t, filepath.Join(outputDir, "apod-export-0.jpg"))
				assert.NoFileExists(t, filepath.Join(outputDir, "apod-export-1.jpg"))
			},
		},
		{
			name:           "report on empty directory",
			args:           []string{"report"},
			expectedOutput: "No APOD files found",
		},
		{
			name:          "invalid concurrency",
			args:          []string{"export", "--concurrency", "0"},
			expectedError: "concurrency limit must be at least 1",
		},
	}

	for _, test := range tests {
		runCLITest(t, binaryPath, server.Endpoint(), test)
	}
}
