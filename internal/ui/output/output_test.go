package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/polybuild/internal/ui/output"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.True(t, output.NoColor())
	assert.Equal(t, termenv.Ascii, output.ColorProfile())
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())
}

func TestNew_WritesToWriter(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)
	_, err := out.WriteString(out.String("plain").Bold().String())

	assert.NoError(t, err)
	assert.Equal(t, "plain", buf.String())
}
