package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLastLine разбирает последнюю JSON строку из буфера логов
func decodeLastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestInitWithWriter_WritesServiceField(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("commerce-service", "info", &buf)

	// Act
	Info().Str("order_id", "42").Msg("order created")

	// Assert
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "commerce-service", entry["service"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "order created", entry["message"])
	assert.Equal(t, "42", entry["order_id"])
	assert.Contains(t, entry, "time")
}

func TestInitWithWriter_DebugFilteredAtInfoLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("commerce-service", "info", &buf)

	// Act
	Debug().Msg("cache lookup details")

	// Assert
	assert.Zero(t, buf.Len())
}

func TestInitWithWriter_DebugEmittedAtDebugLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("commerce-service", "debug", &buf)

	// Act
	Debug().Int("hits", 3).Msg("cache lookup details")

	// Assert
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(3), entry["hits"])
}

func TestInitWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("commerce-service", "loud", &buf)

	// Act
	Debug().Msg("suppressed")
	Info().Msg("visible")

	// Assert
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "visible", entry["message"])
	assert.NotContains(t, buf.String(), "suppressed")
}

func TestWith_ChildLoggerCarriesContextField(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	InitWithWriter("commerce-service", "info", &buf)

	// Act
	child := With().Str("component", "stock_monitor").Logger()
	child.Warn().Int("product_id", 7).Msg("stock below threshold")

	// Assert
	entry := decodeLastLine(t, &buf)
	assert.Equal(t, "stock_monitor", entry["component"])
	assert.Equal(t, "commerce-service", entry["service"])
	assert.Equal(t, "warn", entry["level"])
}
