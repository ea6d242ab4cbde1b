package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/model"
)

func sampleResult() *model.BatchResult {
	return model.NewBatchResult([]model.Outcome{
		model.NewSuccess(model.WorkItem{Key: "2020-03-01", Index: 0}, "apod-export-0.jpg", 1234),
		model.NewFailure(model.WorkItem{Key: "B", Index: 1}, model.ErrorKindLocate, errors.ErrLocate),
	})
}

func TestListArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apod-export-1.jpg"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "apod-export-0.jpg"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	artifacts, err := ListArtifacts(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []Artifact{
		{Name: "apod-export-0.jpg", Size: 1},
		{Name: "apod-export-1.jpg", Size: 2},
	}, artifacts)

	t.Run("missing dir", func(t *testing.T) {
		artifacts, err := ListArtifacts(filepath.Join(dir, "missing"), DefaultPattern)
		require.NoError(t, err)
		assert.Empty(t, artifacts)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := ListArtifacts(dir, "[")
		assert.Error(t, err)
	})
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "json", "YAML"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, errors.ErrInvalidOutputFormat)

	_, err = NewReporter(&bytes.Buffer{}, "csv")
	assert.Error(t, err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReporter(&buf, "text")
	require.NoError(t, err)

	require.NoError(t, r.Write(sampleResult(), []Artifact{{Name: "apod-export-0.jpg", Size: 1234}}))

	out := buf.String()
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, "apod-export-0.jpg (1,234 bytes)")
	assert.Contains(t, out, "locate: locate failed")
	assert.Contains(t, out, "1 succeeded, 1 failed, 1,234 bytes written")
	assert.Contains(t, out, "  apod-export-0.jpg: 1,234 bytes")
}

func TestWriteText_NoArtifacts(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Format: FormatText}

	require.NoError(t, r.Write(nil, nil))

	assert.Equal(t, "Downloaded APODs:\n  No APOD files found\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Format: FormatJSON}
	result := sampleResult()

	require.NoError(t, r.Write(result, nil))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, result.RunID, doc["run_id"])
	assert.Equal(t, false, doc["all_succeeded"])
	assert.Equal(t, []any{}, doc["artifacts"])
	outcomes, ok := doc["outcomes"].([]any)
	require.True(t, ok)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "locate", outcomes[1].(map[string]any)["error_kind"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Format: FormatYAML}

	require.NoError(t, r.Write(nil, []Artifact{{Name: "apod-export-0.jpg", Size: 9}}))

	var doc struct {
		Artifacts []Artifact `yaml:"artifacts"`
		Outcomes  []any      `yaml:"outcomes"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []Artifact{{Name: "apod-export-0.jpg", Size: 9}}, doc.Artifacts)
	assert.Empty(t, doc.Outcomes)
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, BannerInfo{
		APIKey:                 "abcdefghijklmnopqrstuvwxyz",
		MaxConcurrentDownloads: 3,
		MaxConcurrentExports:   2,
		Dates:                  []string{"2020-03-01", "2021-01-01"},
	})

	out := buf.String()
	assert.Contains(t, out, "NASA APOD Exporter")
	assert.Contains(t, out, "API Key: abcdefghij...\n")
	assert.NotContains(t, out, "klmnop")
	assert.Contains(t, out, "Max Concurrent Downloads: 3")
	assert.Contains(t, out, "Max Concurrent Exports: 2")
	assert.Contains(t, out, "Dates to process: 2020-03-01, 2021-01-01")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "DEMO_KEY...", maskKey("DEMO_KEY"))
	assert.Equal(t, "0123456789...", maskKey("0123456789abc"))
}
