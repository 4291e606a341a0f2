package merge

import "strings"

// ColumnNone marks a cc, bcc or subject mapping that uses the configured default.
const ColumnNone = "none"

// DefaultAttachmentName is used when no attachment filename template is configured.
const DefaultAttachmentName = "output.pdf"

// AttachmentExtension is appended to rendered attachment filenames.
const AttachmentExtension = ".pdf"

// Operator is a condition comparison operator.
type Operator string

// Supported condition operators.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// Valid reports whether the operator is supported.
func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpNotContains, OpGreaterThan, OpLessThan:
		return true
	}
	return false
}

// BodyFormat is the markup of Config.Body.
type BodyFormat string

const (
	BodyHTML     BodyFormat = "html"
	BodyMarkdown BodyFormat = "markdown"
)

// Config describes a merge run. It is built by the caller, passed by value and
// never modified by the engine.
type Config struct {
	// Dataset name handed to the row source opener.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Column mappings. Empty or ColumnNone selects the matching default.
	ToColumn      string `json:"to_column" yaml:"to_column"`
	CCColumn      string `json:"cc_column,omitempty" yaml:"cc_column,omitempty"`
	BCCColumn     string `json:"bcc_column,omitempty" yaml:"bcc_column,omitempty"`
	SubjectColumn string `json:"subject_column,omitempty" yaml:"subject_column,omitempty"`

	DefaultCC      string `json:"default_cc,omitempty" yaml:"default_cc,omitempty"`
	DefaultBCC     string `json:"default_bcc,omitempty" yaml:"default_bcc,omitempty"`
	DefaultSubject string `json:"default_subject,omitempty" yaml:"default_subject,omitempty"`

	Body       string     `json:"body" yaml:"body"`
	BodyFormat BodyFormat `json:"body_format,omitempty" yaml:"body_format,omitempty"`
	ReplyTo    string     `json:"reply_to,omitempty" yaml:"reply_to,omitempty"`
	From       string     `json:"from,omitempty" yaml:"from,omitempty"`

	ConditionEnabled  bool     `json:"condition_enabled" yaml:"condition_enabled"`
	ConditionColumn   string   `json:"condition_column,omitempty" yaml:"condition_column,omitempty"`
	ConditionOperator Operator `json:"condition_operator,omitempty" yaml:"condition_operator,omitempty"`
	ConditionValue    string   `json:"condition_value,omitempty" yaml:"condition_value,omitempty"`

	AttachmentEnabled  bool   `json:"attachment_enabled" yaml:"attachment_enabled"`
	AttachmentFilename string `json:"attachment_filename,omitempty" yaml:"attachment_filename,omitempty"`

	// Object storage prefix for archived attachments. Empty disables archiving.
	OutputFolder string `json:"output_folder,omitempty" yaml:"output_folder,omitempty"`
}

// Condition returns the row filter described by the config.
func (c Config) Condition() Condition {
	return Condition{
		Column:   c.ConditionColumn,
		Operator: c.ConditionOperator,
		Value:    c.ConditionValue,
	}
}

// columnSet reports whether a mapping names a column rather than a default.
func columnSet(column string) bool {
	column = strings.TrimSpace(column)
	return column != "" && !strings.EqualFold(column, ColumnNone)
}
