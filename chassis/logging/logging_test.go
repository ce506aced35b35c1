package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("verbose"))
}

func TestWithFieldsCarriesModule(t *testing.T) {
	buf := &bytes.Buffer{}
	InitWithOutput("producer", "info", buf)

	WithFields(Fields{
		"event": "send_message",
		"queue": "orders",
	}).Info("message sent")

	out := buf.String()
	assert.Contains(t, out, "module=producer")
	assert.Contains(t, out, "event=send_message")
	assert.Contains(t, out, "queue=orders")
	assert.Contains(t, out, "message sent")
}

func TestLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	InitWithOutput("producer", "error", buf)

	Debug("hidden")
	Info("hidden too")
	Error("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}
