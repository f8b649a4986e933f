package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	assert.Equal(t, OrderExtractDescription, GetToolDescription("order_extract"))
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	names := GetAllToolNames()
	assert.Len(t, names, len(ToolDescriptions))
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "order_register")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Show one registered order, its items and its receiving history.", Summary("order_get"))
	assert.Equal(t, "Tool description not available", Summary("nope"))
}
