package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Len(t, c.Services, 4)
	assert.Equal(t, []string{"Mumbai", "Hyderabad", "Kolkata", "Pune", "Indore"}, c.Locations)
	assert.Len(t, c.Reviews, 2)

	svc, ok := c.FindService("hair color")
	require.True(t, ok)
	assert.Equal(t, 2499, svc.PriceINR)

	_, ok = c.FindService("massage")
	assert.False(t, ok)
}

func TestHandlerServesJSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(Default()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got Catalog
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, Default(), got)
}
