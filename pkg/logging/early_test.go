package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEarlyLog(t *testing.T) {
	var buf bytes.Buffer
	l := &EarlyLog{out: &buf, service: "filter-service"}

	l.Error("Failed to load config: %v", "missing file")
	l.Info("starting")

	out := buf.String()
	assert.Contains(t, out, "ERROR [filter-service] Failed to load config: missing file\n")
	assert.Contains(t, out, "INFO [filter-service] starting\n")
}
