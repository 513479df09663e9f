package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

type versionResponse struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// VersionHandler reports the build metadata stamped in via ldflags.
// Missing values fall back to "dev" and "unknown".
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	response := versionResponse{
		Version:   orDefault(version, "dev"),
		GitCommit: orDefault(gitCommit, "unknown"),
		BuildDate: orDefault(buildDate, "unknown"),
		GoVersion: runtime.Version(),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
