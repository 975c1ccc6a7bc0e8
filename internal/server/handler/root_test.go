package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootIndex(t *testing.T) {
	h := NewRootHandler("sokomjinga-api", []Link{
		{Rel: "health", Href: "/health"},
		{Rel: "markets", Href: "/markets"},
	})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Index)

	t.Run("directory_at_root", func(t *testing.T) {
		rec := doRequest(t, mux, http.MethodGet, "/", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			OK      bool   `json:"ok"`
			Service string `json:"service"`
			Links   []Link `json:"links"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.True(t, body.OK)
		require.Equal(t, "sokomjinga-api", body.Service)
		require.Len(t, body.Links, 2)
		require.Equal(t, "/health", body.Links[0].Href)
	})

	t.Run("unknown_path_is_404", func(t *testing.T) {
		rec := doRequest(t, mux, http.MethodGet, "/nope", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "not found", decodeBody(t, rec)["error"])
	})
}
