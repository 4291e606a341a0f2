package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/merge"
)

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, run(context.Background(), nil), errUsage)
	require.ErrorIs(t, run(context.Background(), []string{"bogus"}), errUsage)
}

func TestDecodeMergeConfig(t *testing.T) {
	t.Parallel()

	const doc = `
source: customers
to_column: Email
cc_column: none
default_subject: Your invoice
body: "**Hello**"
body_format: markdown
condition_enabled: true
condition_column: Amount
condition_operator: greater_than
condition_value: "100"
attachment_enabled: true
attachment_filename: invoice-<<Name>>
output_folder: invoices
`
	var cfg merge.Config
	require.NoError(t, decodeMergeConfig(strings.NewReader(doc), &cfg))

	assert.Equal(t, "customers", cfg.Source)
	assert.Equal(t, merge.BodyMarkdown, cfg.BodyFormat)
	assert.Equal(t, merge.OpGreaterThan, cfg.ConditionOperator)
	assert.Equal(t, "100", cfg.ConditionValue)
	assert.True(t, cfg.AttachmentEnabled)
	assert.Equal(t, "invoices", cfg.OutputFolder)
}

func TestDecodeMergeConfig_UnknownField(t *testing.T) {
	t.Parallel()

	var cfg merge.Config
	err := decodeMergeConfig(strings.NewReader("to_colum: Email\n"), &cfg)
	require.Error(t, err)
}

func TestNewSender_UnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := newSender(config{Provider: "carrier-pigeon"})
	require.Error(t, err)
}

func TestNewSources_FileSystem(t *testing.T) {
	t.Parallel()

	sources, archiver, err := newSources(config{SourceDir: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, sources)
	assert.Nil(t, archiver)
}
