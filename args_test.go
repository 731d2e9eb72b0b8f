package grammarschool

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func TestArgsAccessors(t *testing.T) {
	args := Args{
		"name":     StringValue("Drums", Position{}),
		"priority": IdentValue("high", Position{}),
		"volume":   NumberValue(decimal.RequireFromString("0.8"), Position{}),
		"count":    NumberValue(decimal.NewFromInt(4), Position{}),
		"muted":    BoolValue(true, Position{}),
	}

	assert.True(t, args.Has("name"))
	assert.False(t, args.Has("tempo"))

	assert.Equal(t, "Drums", args.String("name", ""))
	assert.Equal(t, "high", args.String("priority", ""))
	assert.Equal(t, "fallback", args.String("tempo", "fallback"))
	assert.Equal(t, "fallback", args.String("volume", "fallback"))

	assert.Equal(t, "0.8", args.Number("volume", decimal.Zero).String())
	assert.Equal(t, "1", args.Number("tempo", decimal.NewFromInt(1)).String())

	assert.Equal(t, 0.8, args.Float64("volume", 0))
	assert.Equal(t, 120.0, args.Float64("tempo", 120))

	assert.Equal(t, int64(4), args.Int64("count", 0))
	assert.Equal(t, int64(16), args.Int64("tempo", 16))
	// A fractional number does not silently truncate.
	assert.Equal(t, int64(-1), args.Int64("volume", -1))

	assert.True(t, args.Bool("muted", false))
	assert.False(t, args.Bool("solo", false))
}
