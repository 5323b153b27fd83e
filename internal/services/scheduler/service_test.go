package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCron(t *testing.T) {
	t.Run("Should convert 5-field to 6-field cron", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			expected string
		}{
			{
				name:     "Daily at 2 AM",
				input:    "0 2 * * *",
				expected: "0 0 2 * * *",
			},
			{
				name:     "Every 15 minutes",
				input:    "*/15 * * * *",
				expected: "0 */15 * * * *",
			},
			{
				name:     "Every Monday at 9 AM",
				input:    "0 9 * * 1",
				expected: "0 0 9 * * 1",
			},
			{
				name:     "First day of month at midnight",
				input:    "0 0 1 * *",
				expected: "0 0 0 1 * *",
			},
			{
				name:     "Every 5 minutes",
				input:    "*/5 * * * *",
				expected: "0 */5 * * * *",
			},
			{
				name:     "At 3:30 PM every day",
				input:    "30 15 * * *",
				expected: "0 30 15 * * *",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := normalizeCron(tt.input)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			})
		}
	})

	t.Run("Should keep 6-field cron unchanged", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{
				name:  "6-field daily at 2 AM",
				input: "0 0 2 * * *",
			},
			{
				name:  "6-field every 15 minutes",
				input: "0 */15 * * * *",
			},
			{
				name:  "6-field with seconds",
				input: "30 0 2 * * 1",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := normalizeCron(tt.input)
				require.NoError(t, err)
				assert.Equal(t, tt.input, result)
			})
		}
	})

	t.Run("Should fail with invalid field count", func(t *testing.T) {
		tests := []struct {
			name  string
			input string
		}{
			{
				name:  "Too few fields (4)",
				input: "0 2 * *",
			},
			{
				name:  "Too many fields (7)",
				input: "0 0 2 * * * 2025",
			},
			{
				name:  "Empty string",
				input: "",
			},
			{
				name:  "Single field",
				input: "*",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := normalizeCron(tt.input)
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid cron expression")
			})
		}
	})

	t.Run("Should handle cron with extra whitespace", func(t *testing.T) {
		input := "  0   2   *   *   *  "
		// The function trims leading/trailing but keeps internal whitespace structure
		expected := "0 0   2   *   *   *"

		result, err := normalizeCron(input)
		require.NoError(t, err)
		assert.Equal(t, expected, result)
	})
}

func TestCronEdgeCases(t *testing.T) {
	t.Run("Should handle complex cron expressions", func(t *testing.T) {
		tests := []struct {
			name     string
			input    string
			expected string
		}{
			{
				name:     "Range (hours 9-17)",
				input:    "0 9-17 * * *",
				expected: "0 0 9-17 * * *",
			},
			{
				name:     "Multiple values",
				input:    "0 8,12,16 * * *",
				expected: "0 0 8,12,16 * * *",
			},
			{
				name:     "Step values",
				input:    "0 */2 * * *",
				expected: "0 0 */2 * * *",
			},
			{
				name:     "Specific days (weekdays)",
				input:    "0 9 * * 1-5",
				expected: "0 0 9 * * 1-5",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result, err := normalizeCron(tt.input)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			})
		}
	})
}
