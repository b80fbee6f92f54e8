package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	_ "time/tzdata"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hrygo/gotadate/internal/errors"
	"github.com/hrygo/gotadate/internal/observability"
	"github.com/hrygo/gotadate/internal/profile"
	"github.com/hrygo/gotadate/plugin/gotadate"
	storetest "github.com/hrygo/gotadate/store/test"
)

type testAPI struct {
	echo    *echo.Echo
	service *APIV1Service
}

func newTestAPI(t *testing.T, extractor gotadate.Extractor) *testAPI {
	t.Helper()
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)

	p := &profile.Profile{Mode: "dev", Timezone: "UTC", BatchLimit: 2, RateLimit: 1000, RateBurst: 1000}
	metrics := observability.NewMetrics(0)
	if extractor == nil {
		extractor = gotadate.NewService("UTC", gotadate.WithMetrics(metrics))
	}

	e := echo.New()
	svc := NewAPIV1Service(p, st, extractor, metrics)
	svc.Register(e)
	return &testAPI{echo: e, service: svc}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestExtract(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name string
		req  ExtractRequest
		want []string
	}{
		{
			name: "date and time",
			req:  ExtractRequest{Text: "lunch on 23/10/1988 at 1 pm", Reference: "1988-10-20T15:00:00Z"},
			want: []string{"1988-10-23T13:00:00Z"},
		},
		{
			name: "relative dates",
			req:  ExtractRequest{Text: "yesterday or tomorrow", Reference: "1988-10-20"},
			want: []string{"1988-10-19T00:00:00Z", "1988-10-21T00:00:00Z"},
		},
		{
			name: "timezone",
			req:  ExtractRequest{Text: "Oct 23, 2016 11 pm", Reference: "2016-10-20", Timezone: "America/New_York"},
			want: []string{"2016-10-23T23:00:00-04:00"},
		},
		{
			name: "no match",
			req:  ExtractRequest{Text: "nothing to see", Reference: "2016-10-20"},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/extract", tt.req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[ExtractResponse](t, rec)
			assert.Equal(t, tt.want, resp.Timestamps)
			assert.Empty(t, resp.UID)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name   string
		req    ExtractRequest
		status int
		code   apperrors.ErrorCode
	}{
		{"empty text", ExtractRequest{Text: "  "}, http.StatusBadRequest, apperrors.ErrCodeInvalidArgument},
		{"bad timezone", ExtractRequest{Text: "tomorrow", Timezone: "Moon/Base"}, http.StatusBadRequest, apperrors.ErrCodeInvalidTimezone},
		{"bad reference", ExtractRequest{Text: "tomorrow", Reference: "soon"}, http.StatusBadRequest, apperrors.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/api/v1/extract", tt.req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, string(tt.code), decode[ErrorResponse](t, rec).Code)
		})
	}
}

func TestExtract_ServiceErrorStatus(t *testing.T) {
	m := gotadate.NewMockExtractor()
	m.On("Extract", mock.Anything, "tomorrow", mock.Anything).
		Return(nil, apperrors.SourceReadFailed(assert.AnError))
	api := newTestAPI(t, m)

	rec := api.do(t, http.MethodPost, "/api/v1/extract", ExtractRequest{Text: "tomorrow"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(apperrors.ErrCodeSourceRead), decode[ErrorResponse](t, rec).Code)
	m.AssertExpectations(t)
}

func TestExtractionLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/extract", ExtractRequest{
		Text:      "see you tomorrow",
		Reference: "1988-10-20T15:00:00Z",
		Save:      true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[ExtractResponse](t, rec)
	require.NotEmpty(t, saved.UID)

	rec = api.do(t, http.MethodGet, "/api/v1/extractions/"+saved.UID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[ExtractionResponse](t, rec)
	assert.Equal(t, "see you tomorrow", got.Input)
	assert.Equal(t, SourceAPI, got.Source)
	assert.Equal(t, []string{"1988-10-21T00:00:00Z"}, got.Timestamps)
	assert.Equal(t, "1988-10-20T15:00:00Z", got.Reference)

	rec = api.do(t, http.MethodGet, "/api/v1/extractions?source=api&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListExtractionsResponse](t, rec)
	require.NotEmpty(t, list.Extractions)
	assert.Equal(t, saved.UID, list.Extractions[0].UID)

	rec = api.do(t, http.MethodDelete, "/api/v1/extractions/"+saved.UID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/extractions/"+saved.UID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, http.MethodDelete, "/api/v1/extractions/"+saved.UID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListExtractions_InvalidPaging(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, query := range []string{"limit=0", "limit=101", "limit=x", "offset=-1"} {
		t.Run(query, func(t *testing.T) {
			rec := api.do(t, http.MethodGet, "/api/v1/extractions?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestExtractBatch(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/extract/batch", BatchExtractRequest{Items: []ExtractRequest{
		{Text: "1st March 2016", Reference: "2016-01-01"},
		{Text: "", Reference: "2016-01-01"},
		{Text: "at 6", Reference: "2016-01-01"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[BatchExtractResponse](t, rec)
	require.Len(t, resp.Results, 3)
	require.NotNil(t, resp.Results[0].ExtractResponse)
	assert.Equal(t, []string{"2016-03-01T00:00:00Z"}, resp.Results[0].Timestamps)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, string(apperrors.ErrCodeInvalidArgument), resp.Results[1].Error.Code)
	assert.Equal(t, []string{"2016-01-01T18:00:00Z"}, resp.Results[2].Timestamps)
}

func TestExtractBatch_Limits(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/api/v1/extract/batch", BatchExtractRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	items := make([]ExtractRequest, maxBatchItems+1)
	rec = api.do(t, http.MethodPost, "/api/v1/extract/batch", BatchExtractRequest{Items: items})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetricsOverview(t *testing.T) {
	api := newTestAPI(t, nil)

	api.do(t, http.MethodPost, "/api/v1/extract", ExtractRequest{Text: "tomorrow", Reference: "2016-01-01"})
	api.do(t, http.MethodPost, "/api/v1/extract", ExtractRequest{Text: "3/4/2016 and 5/6/2016", Reference: "2016-01-01"})

	rec := api.do(t, http.MethodGet, "/api/v1/system/metrics/overview", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[MetricsOverviewResponse](t, rec)
	assert.Equal(t, int64(2), resp.TotalScans)
	assert.Equal(t, int64(3), resp.Timestamps)
	assert.Equal(t, 100.0, resp.SuccessRate)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, SourceAPI, resp.Sources[0].Source)
}

func TestGetStorageStats_Disabled(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodGet, "/api/v1/system/stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
