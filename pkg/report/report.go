// Package report renders batch outcomes and the artifacts found on disk.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/apodex/pkg/errors"
	"github.com/glorpus-work/apodex/pkg/fsutil"
	"github.com/glorpus-work/apodex/pkg/model"
)

// DefaultPattern matches the files written by the default naming scheme.
const DefaultPattern = "apod-export-*.jpg"

// Format selects how a Reporter renders.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates s as a report format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", errors.ErrInvalidOutputFormatWithDetails(s)
	}
}

// Artifact is a persisted file and its size in bytes.
type Artifact struct {
	Name string `json:"name" yaml:"name"`
	Size int64  `json:"size" yaml:"size"`
}

// ListArtifacts returns the files in dir matching pattern, sorted by name.
func ListArtifacts(dir, pattern string) ([]Artifact, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	files, err := fsutil.Glob(dir, pattern)
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(files))
	for _, f := range files {
		artifacts = append(artifacts, Artifact{Name: f.Name, Size: f.Size})
	}
	return artifacts, nil
}

// Reporter writes results to Out in the configured Format.
type Reporter struct {
	Out    io.Writer
	Format Format
}

// NewReporter creates a reporter for the named format.
func NewReporter(out io.Writer, format string) (*Reporter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &Reporter{Out: out, Format: f}, nil
}

// document is the machine-readable report shape.
type document struct {
	RunID        string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	AllSucceeded *bool           `json:"all_succeeded,omitempty" yaml:"all_succeeded,omitempty"`
	BytesWritten int64           `json:"bytes_written,omitempty" yaml:"bytes_written,omitempty"`
	Outcomes     []model.Outcome `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
	Artifacts    []Artifact      `json:"artifacts" yaml:"artifacts"`
}

// Write renders result (which may be nil) followed by artifacts.
func (r *Reporter) Write(result *model.BatchResult, artifacts []Artifact) error {
	switch r.Format {
	case FormatJSON, FormatYAML:
		return r.writeStructured(result, artifacts)
	default:
		return r.writeText(result, artifacts)
	}
}

func (r *Reporter) writeStructured(result *model.BatchResult, artifacts []Artifact) error {
	doc := document{Artifacts: artifacts}
	if doc.Artifacts == nil {
		doc.Artifacts = []Artifact{}
	}
	if result != nil {
		all := result.AllSucceeded
		doc.RunID = result.RunID
		doc.AllSucceeded = &all
		doc.BytesWritten = result.BytesWritten()
		doc.Outcomes = result.Outcomes
	}

	if r.Format == FormatJSON {
		enc := json.NewEncoder(r.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(r.Out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (r *Reporter) writeText(result *model.BatchResult, artifacts []Artifact) error {
	p := message.NewPrinter(language.English)

	if result != nil {
		tw := tabwriter.NewWriter(r.Out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "INDEX\tKEY\tSTATUS\tDETAIL")
		_, _ = fmt.Fprintln(tw, "-----\t---\t------\t------")
		for _, o := range result.Outcomes {
			detail := o.Message
			if o.Succeeded() {
				detail = p.Sprintf("%s (%d bytes)", o.Artifact, o.BytesWritten)
			} else if o.Kind != "" {
				detail = fmt.Sprintf("%s: %s", o.Kind, o.Message)
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", o.Index, o.Key, o.Status, detail)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, _ = p.Fprintf(r.Out, "\n%d succeeded, %d failed, %d bytes written (run %s)\n\n",
			len(result.Succeeded()), len(result.Failures()), result.BytesWritten(), result.RunID)
	}

	_, _ = fmt.Fprintln(r.Out, "Downloaded APODs:")
	if len(artifacts) == 0 {
		_, err := fmt.Fprintln(r.Out, "  No APOD files found")
		return err
	}
	for _, a := range artifacts {
		if _, err := p.Fprintf(r.Out, "  %s: %d bytes\n", a.Name, a.Size); err != nil {
			return err
		}
	}
	return nil
}
