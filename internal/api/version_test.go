package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	tests := []struct {
		name                          string
		version, gitCommit, buildDate string
		want                          versionResponse
	}{
		{
			name:      "with all values",
			version:   "0.1.0",
			gitCommit: "abc123def456",
			buildDate: "2026-01-28T12:00:00Z",
			want:      versionResponse{Version: "0.1.0", GitCommit: "abc123def456", BuildDate: "2026-01-28T12:00:00Z"},
		},
		{
			name: "with defaults",
			want: versionResponse{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"},
		},
		{
			name:      "with partial values",
			version:   "1.0.0",
			buildDate: "2026-01-28T12:00:00Z",
			want:      versionResponse{Version: "1.0.0", GitCommit: "unknown", BuildDate: "2026-01-28T12:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := httptest.NewRecorder()
			VersionHandler(tt.version, tt.gitCommit, tt.buildDate).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/version", nil))

			require.Equal(t, http.StatusOK, res.Code)
			require.Equal(t, "application/json", res.Header().Get("Content-Type"))

			var got versionResponse
			require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
			tt.want.GoVersion = runtime.Version()
			require.Equal(t, tt.want, got)
		})
	}
}
