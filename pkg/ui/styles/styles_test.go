package styles_test

import (
	"testing"

	"github.com/arthur-debert/wasmstash/pkg/ui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleRegistry(t *testing.T) {
	expectedStyles := []string{
		"New", "Old", "Name", "Digest", "Size",
		"Error", "Warning", "Success", "Muted", "DryRunBanner",
	}

	for _, styleName := range expectedStyles {
		t.Run(styleName, func(t *testing.T) {
			_, exists := styles.StyleRegistry[styleName]
			assert.True(t, exists, "Style %s should exist in registry", styleName)
		})
	}
}

func TestGetStyle(t *testing.T) {
	assert.True(t, styles.GetStyle("New").GetBold())
	assert.True(t, styles.GetStyle("Size").GetItalic())

	// Unknown names fall back to an empty style
	assert.Equal(t, "plain", styles.GetStyle("DoesNotExist").Render("plain"))
}

func TestLoadStylesFromData(t *testing.T) {
	data := []byte(`
colors:
  accent:
    light: "#000000"
    dark: "#ffffff"
styles:
  Accent:
    bold: true
    foreground: accent
`)
	require.NoError(t, styles.LoadStylesFromData(data))
	t.Cleanup(func() {
		// Restore the embedded sheet for other tests
		require.NoError(t, styles.Reset())
	})

	style := styles.GetStyle("Accent")
	assert.True(t, style.GetBold())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"}, style.GetForeground())

	assert.Error(t, styles.LoadStylesFromData([]byte("colors: [")))
}
