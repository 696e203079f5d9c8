package sarif

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// SARIF 2.1.0 constants
const (
	SchemaURI   = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version     = "2.1.0"
	ToolName    = "searchbin"
	ToolVersion = "1.0.0"

	// RuleID identifies the single rule: the searched pattern.
	RuleID = "searchbin.pattern"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool        Tool         `json:"tool"`
	Invocations []Invocation `json:"invocations,omitempty"`
	Results     []Result     `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes the searched pattern
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Invocation carries tool notifications for the run
type Invocation struct {
	ExecutionSuccessful        bool           `json:"executionSuccessful"`
	ToolExecutionNotifications []Notification `json:"toolExecutionNotifications,omitempty"`
}

// Notification is a message emitted during the run
type Notification struct {
	Level   string  `json:"level"`
	Message Message `json:"message"`
}

// Result represents a single match
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           Region           `json:"region"`
	ContextRegion    *Region          `json:"contextRegion,omitempty"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies a byte range
type Region struct {
	ByteOffset int64            `json:"byteOffset"`
	ByteLength int              `json:"byteLength"`
	Snippet    *ArtifactContent `json:"snippet,omitempty"`
}

// ArtifactContent holds region bytes, base64 encoded
type ArtifactContent struct {
	Binary string `json:"binary"`
}

// NewReport creates a new SARIF report with initialized structure
func NewReport() *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: ToolVersion,
						Rules:   []Rule{},
					},
				},
				Invocations: []Invocation{{ExecutionSuccessful: true}},
				Results:     []Result{},
			},
		},
	}
}

// AddRule adds the searched pattern as the report's rule
func (r *Report) AddRule(p types.Pattern) {
	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, Rule{
		ID:   RuleID,
		Name: "BinaryPattern",
		ShortDescription: ShortDescription{
			Text: fmt.Sprintf("%d byte pattern %s", p.Len(), p.String()),
		},
	})
}

// AddResult adds a match result to the report
func (r *Report) AddResult(match *types.Match) {
	loc := PhysicalLocation{
		ArtifactLocation: ArtifactLocation{URI: formatFileURI(match.Source)},
		Region: Region{
			ByteOffset: match.Offset,
			ByteLength: match.Length,
		},
	}

	if match.Snippet != nil && len(match.Snippet.Data) > 0 {
		loc.ContextRegion = &Region{
			ByteOffset: match.Snippet.Start,
			ByteLength: len(match.Snippet.Data),
			Snippet: &ArtifactContent{
				Binary: base64.StdEncoding.EncodeToString(match.Snippet.Data),
			},
		}
	}

	r.Runs[0].Results = append(r.Runs[0].Results, Result{
		RuleID: RuleID,
		Level:  "note",
		Message: Message{
			Text: fmt.Sprintf("pattern found at offset %d (0x%X)", match.Offset, match.Offset),
		},
		Locations: []Location{{PhysicalLocation: loc}},
	})
}

// AddNotification records a tool notification on the run
func (r *Report) AddNotification(text string) {
	inv := &r.Runs[0].Invocations[0]
	inv.ToolExecutionNotifications = append(inv.ToolExecutionNotifications, Notification{
		Level:   "note",
		Message: Message{Text: text},
	})
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
