package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/crashsearch/pkg/crashsearch"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store/memstore"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v := vocab.New()
	entries := map[vocab.Category][]vocab.Entry{
		vocab.Borough: {
			{Canonical: "BROOKLYN", Aliases: []string{"bk"}},
			{Canonical: "QUEENS"},
		},
		vocab.InjuryType: {
			{Canonical: "KILLED", Aliases: []string{"fatal"}},
			{Canonical: "INJURED"},
		},
	}
	for cat, es := range entries {
		for _, e := range es {
			require.NoError(t, v.Add(cat, e))
		}
	}
	require.NoError(t, v.SetYearRange(2020, 2022))
	require.NoError(t, v.Freeze())

	st := memstore.New()
	rows := []store.Row{
		{CrashDate: time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC), Borough: "BROOKLYN", PersonInjury: "INJURED"},
		{CrashDate: time.Date(2022, 6, 2, 0, 0, 0, 0, time.UTC), Borough: "BROOKLYN", PersonInjury: "KILLED"},
		{CrashDate: time.Date(2022, 7, 3, 0, 0, 0, 0, time.UTC), Borough: "QUEENS", PersonInjury: "INJURED"},
	}
	require.NoError(t, st.InsertRows(context.Background(), rows))

	interp, err := crashsearch.NewInterpreter(crashsearch.Options{Vocabs: v, MaxQueryBytes: 100})
	require.NoError(t, err)
	engine, err := crashsearch.NewEngine(interp, st)
	require.NoError(t, err)

	return NewHandler(engine, v).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMeta(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodGet, "/api/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meta map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))

	assert.Equal(t, []string{"BROOKLYN", "QUEENS"}, meta["borough"])
	assert.Equal(t, []string{"2020", "2021", "2022"}, meta["year"])
	assert.Contains(t, meta, "vehicle_type")
}

func TestSearch(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodPost, "/api/search", gin.H{"query": "brooklyn 2022"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Filters map[string][]string `json:"filters"`
		Count   int64               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, []string{"BROOKLYN"}, resp.Filters["borough"])
	assert.Equal(t, []string{"2022"}, resp.Filters["year"])
	assert.Equal(t, int64(1), resp.Count)
}

func TestSearchUnparseable(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodPost, "/api/search", gin.H{"query": "xyzzy"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Filters map[string][]string `json:"filters"`
		Count   int64               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Empty(t, resp.Filters)
	assert.Equal(t, int64(3), resp.Count, "empty filters mean show everything")
}

func TestSearchQueryTooLong(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	w := doJSON(t, testRouter(t), http.MethodPost, "/api/search", gin.H{"query": string(long)})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query too long")
}

func TestReportMergesQueryOverDropdowns(t *testing.T) {
	// Dropdowns say QUEENS, the query says brooklyn: the parsed borough
	// overrides, while the dropdown-only injury filter survives.
	w := doJSON(t, testRouter(t), http.MethodPost, "/api/report", gin.H{
		"filters": gin.H{"borough": []string{"QUEENS"}, "injury_type": []string{"KILLED"}},
		"query":   "brooklyn",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rep struct {
		Total   int                 `json:"total"`
		Message string              `json:"message"`
		Filters map[string][]string `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))

	assert.Equal(t, 1, rep.Total)
	assert.Equal(t, []string{"BROOKLYN"}, rep.Filters["borough"])
	assert.Equal(t, []string{"KILLED"}, rep.Filters["injury_type"])
	assert.Contains(t, rep.Message, "1 records found")
}

func TestReportDropdownsOnly(t *testing.T) {
	w := doJSON(t, testRouter(t), http.MethodPost, "/api/report", gin.H{
		"filters": gin.H{"borough": []string{"BROOKLYN"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rep struct {
		Total int    `json:"total"`
		ID    string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, 2, rep.Total)
	assert.NotEmpty(t, rep.ID)
}
