package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIGetRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gettext", r.URL.Path)
		assert.Equal(t, "ctp:x/1", r.URL.Query().Get("urn"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	api := NewAPI(server.URL+"/", nil)
	resp, err := api.GetRaw(context.Background(), "/gettext", url.Values{"urn": {"ctp:x/1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))
}
