package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBodyHTML(t *testing.T) {
	t.Parallel()

	t.Run("html is unchanged", func(t *testing.T) {
		t.Parallel()

		out, err := BodyHTML(FormatHTML, "<p><<Name>></p>")
		require.NoError(t, err)
		require.Equal(t, "<p><<Name>></p>", out)
	})

	t.Run("empty format means html", func(t *testing.T) {
		t.Parallel()

		out, err := BodyHTML("", "**x**")
		require.NoError(t, err)
		require.Equal(t, "**x**", out)
	})

	t.Run("markdown is converted", func(t *testing.T) {
		t.Parallel()

		out, err := BodyHTML("Markdown", "# Hi\n\nThanks **Ana**")
		require.NoError(t, err)
		require.Contains(t, out, "<h1>Hi</h1>")
		require.Contains(t, out, "<strong>Ana</strong>")
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		_, err := BodyHTML("docx", "x")
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}
