package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLogrusContextHook(t *testing.T) {
	log := New(Config{Level: logrus.DebugLevel, Console: true})
	buf := new(bytes.Buffer)
	log.Out = buf

	log.WithField("module", "test").Info("сообщение")

	assert.Contains(t, buf.String(), `source="logrus_test.go:`)
	assert.Contains(t, buf.String(), "module=test")
}

func TestFilePath(t *testing.T) {
	assert.Equal(t, "", FilePath("logs", ""))
	assert.Equal(t, "labsite.log", FilePath("", "labsite.log"))
	assert.Equal(t, "logs/labsite.log", FilePath("logs", "labsite.log"))
}
