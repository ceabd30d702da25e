package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARNING"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("ERROR"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nonsense"))
}

func TestLoggerWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "INFO", "FredSource").WithFields(Fields{"series_id": "DGS10"})

	l.Info("fetched %d observations", 2)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "FredSource", line["component"])
	assert.Equal(t, "DGS10", line["series_id"])
	assert.Equal(t, "fetched 2 observations", line["msg"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "WARNING", "Test")

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warning("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestNamedKeepsSink(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, "INFO", "Root").Named("Child")
	l.Error("boom")
	assert.Contains(t, buf.String(), `"component":"Child"`)
}
