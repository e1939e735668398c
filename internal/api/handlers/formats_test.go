package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFormats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewFormatsHandler()
	router := gin.New()
	router.GET("/api/formats", handler.ListFormats)

	req, err := http.NewRequest("GET", "/api/formats", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Formats []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"formats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Formats, 4)

	ids := make([]string, 0, len(resp.Formats))
	for _, f := range resp.Formats {
		ids = append(ids, f.ID)
		assert.NotEmpty(t, f.Label)
		assert.NotEmpty(t, f.Description)
	}
	assert.Equal(t, []string{"standard", "one_page", "agile_epic", "feature_brief"}, ids)
}
