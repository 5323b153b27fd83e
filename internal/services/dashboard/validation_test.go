package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTriggerImportRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     TriggerImportRequest
		field   string
		message string
	}{
		{"Should require apiName", TriggerImportRequest{APIURL: "https://a.example", Type: "json"}, "apiName", "required"},
		{"Should require apiUrl", TriggerImportRequest{APIName: "A", Type: "json"}, "apiUrl", "required"},
		{"Should require type", TriggerImportRequest{APIName: "A", APIURL: "https://a.example"}, "type", "required"},
		{"Should reject a relative url", TriggerImportRequest{APIName: "A", APIURL: "/jobs", Type: "json"}, "apiUrl", "must be a valid URL"},
		{"Should reject unknown formats", TriggerImportRequest{APIName: "A", APIURL: "https://a.example", Type: "csv"}, "type", "must be one of: json xml"},
		{"Should reject unknown trigger sources", TriggerImportRequest{APIName: "A", APIURL: "https://a.example", Type: "xml", TriggeredBy: "cron"}, "triggeredBy", "must be one of: manual schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTriggerImportRequest(&tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Equal(t, tt.message, vErr.Message)
		})
	}

	t.Run("Should trim and lowercase a valid request", func(t *testing.T) {
		req := TriggerImportRequest{APIName: "  Indeed ", APIURL: " https://api.indeed.com/jobs ", Type: " XML "}

		require.NoError(t, ValidateTriggerImportRequest(&req))
		assert.Equal(t, "Indeed", req.APIName)
		assert.Equal(t, "https://api.indeed.com/jobs", req.APIURL)
		assert.Equal(t, "xml", req.Type)
	})
}
