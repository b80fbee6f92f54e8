package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/hrygo/gotadate/internal/errors"
	"github.com/hrygo/gotadate/plugin/gotadate"
	"github.com/hrygo/gotadate/server/timezone"
	"github.com/hrygo/gotadate/store"
)

const (
	maxBatchItems    = 100
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	Text      string `json:"text"`
	Reference string `json:"reference,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Save      bool   `json:"save,omitempty"`
}

// ExtractResponse lists the timestamps found, formatted as RFC 3339.
type ExtractResponse struct {
	Timestamps []string `json:"timestamps"`
	Reference  string   `json:"reference"`
	Timezone   string   `json:"timezone"`
	UID        string   `json:"uid,omitempty"`
}

// BatchExtractRequest is the body of POST /api/v1/extract/batch.
type BatchExtractRequest struct {
	Items []ExtractRequest `json:"items"`
}

// BatchItemResult holds either a response or an error for one batch item.
type BatchItemResult struct {
	*ExtractResponse
	Error *ErrorResponse `json:"error,omitempty"`
}

// BatchExtractResponse keeps results in request order.
type BatchExtractResponse struct {
	Results []BatchItemResult `json:"results"`
}

// ExtractionResponse is a persisted extraction run.
type ExtractionResponse struct {
	UID        string   `json:"uid"`
	Source     string   `json:"source"`
	Input      string   `json:"input"`
	Reference  string   `json:"reference"`
	Timezone   string   `json:"timezone"`
	Timestamps []string `json:"timestamps"`
	CreatedTs  int64    `json:"created_ts"`
}

// ListExtractionsResponse is the body of GET /api/v1/extractions.
type ListExtractionsResponse struct {
	Extractions []ExtractionResponse `json:"extractions"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Extract scans a single text.
// POST /api/v1/extract
func (s *APIV1Service) Extract(c echo.Context) error {
	var req ExtractRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("malformed request body"))
	}

	resp, err := s.extract(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ExtractBatch scans several texts concurrently, bounded by the batch semaphore.
// POST /api/v1/extract/batch
func (s *APIV1Service) ExtractBatch(c echo.Context) error {
	var req BatchExtractRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, apperrors.InvalidArgument("malformed request body"))
	}
	if len(req.Items) == 0 {
		return writeError(c, apperrors.InvalidArgument("items must not be empty"))
	}
	if len(req.Items) > maxBatchItems {
		return writeError(c, apperrors.InvalidArgument("too many items, max "+strconv.Itoa(maxBatchItems)))
	}

	ctx := c.Request().Context()
	results := make([]BatchItemResult, len(req.Items))
	var g errgroup.Group
	for i, item := range req.Items {
		g.Go(func() error {
			if err := s.batchSemaphore.Acquire(ctx, 1); err != nil {
				return err
			}
			defer s.batchSemaphore.Release(1)

			resp, err := s.extract(ctx, item)
			if err != nil {
				results[i] = BatchItemResult{Error: toErrorResponse(err)}
				return nil
			}
			results[i] = BatchItemResult{ExtractResponse: resp}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return writeError(c, apperrors.ContextCanceled(err))
	}
	return c.JSON(http.StatusOK, BatchExtractResponse{Results: results})
}

func (s *APIV1Service) extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, apperrors.InvalidArgument("text is required")
	}

	loc, err := s.requestLocation(req.Timezone)
	if err != nil {
		return nil, err
	}
	reference, err := gotadate.ParseReference(req.Reference, loc)
	if err != nil {
		return nil, apperrors.InvalidArgument(err.Error())
	}

	result, err := s.Extractor.Extract(ctx, req.Text, gotadate.Options{
		Reference: reference,
		Timezone:  req.Timezone,
		Source:    SourceAPI,
	})
	if err != nil {
		return nil, err
	}

	resp := &ExtractResponse{
		Timestamps: formatTimestamps(result.Timestamps),
		Reference:  result.Reference.Format(time.RFC3339),
		Timezone:   result.Timezone,
	}
	if req.Save {
		created, err := s.Store.CreateExtraction(ctx, &store.Extraction{
			Source:     SourceAPI,
			Input:      req.Text,
			Reference:  result.Reference.Unix(),
			Timezone:   result.Timezone,
			Timestamps: unixSeconds(result.Timestamps),
		})
		if err != nil {
			return nil, apperrors.StorageFailed("failed to save extraction", err)
		}
		resp.UID = created.UID
	}
	return resp, nil
}

// requestLocation validates the timezone early so a bad reference and a bad
// timezone report the right error.
func (s *APIV1Service) requestLocation(tz string) (*time.Location, error) {
	if tz == "" {
		tz = s.Profile.Timezone
	}
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, apperrors.InvalidTimezone(tz, err)
	}
	return loc, nil
}

// ListExtractions lists persisted runs, newest first.
// GET /api/v1/extractions?source=&limit=&offset=
func (s *APIV1Service) ListExtractions(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil || limit <= 0 || limit > maxPageLimit {
		return writeError(c, apperrors.InvalidArgument("limit must be between 1 and "+strconv.Itoa(maxPageLimit)))
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		return writeError(c, apperrors.InvalidArgument("offset must not be negative"))
	}

	find := &store.FindExtraction{Limit: &limit, Offset: &offset}
	if source := c.QueryParam("source"); source != "" {
		find.Source = &source
	}
	list, err := s.Store.ListExtractions(c.Request().Context(), find)
	if err != nil {
		return writeError(c, apperrors.StorageFailed("failed to list extractions", err))
	}

	resp := ListExtractionsResponse{Extractions: make([]ExtractionResponse, 0, len(list))}
	for _, e := range list {
		resp.Extractions = append(resp.Extractions, convertExtraction(e))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetExtraction returns one persisted run.
// GET /api/v1/extractions/:uid
func (s *APIV1Service) GetExtraction(c echo.Context) error {
	uid := c.Param("uid")
	extraction, err := s.Store.GetExtraction(c.Request().Context(), &store.FindExtraction{UID: &uid})
	if err != nil {
		return writeError(c, apperrors.StorageFailed("failed to get extraction", err))
	}
	if extraction == nil {
		return writeError(c, apperrors.NotFound("extraction not found"))
	}
	return c.JSON(http.StatusOK, convertExtraction(extraction))
}

// DeleteExtraction deletes one persisted run.
// DELETE /api/v1/extractions/:uid
func (s *APIV1Service) DeleteExtraction(c echo.Context) error {
	err := s.Store.DeleteExtraction(c.Request().Context(), &store.DeleteExtraction{UID: c.Param("uid")})
	if errors.Is(err, store.ErrNotFound) {
		return writeError(c, apperrors.NotFound("extraction not found"))
	}
	if err != nil {
		return writeError(c, apperrors.StorageFailed("failed to delete extraction", err))
	}
	return c.NoContent(http.StatusNoContent)
}

func convertExtraction(e *store.Extraction) ExtractionResponse {
	loc, err := timezone.ParseTimezone(e.Timezone)
	if err != nil {
		loc = time.UTC
	}
	timestamps := make([]string, len(e.Timestamps))
	for i, ts := range e.Timestamps {
		timestamps[i] = time.Unix(ts, 0).In(loc).Format(time.RFC3339)
	}
	return ExtractionResponse{
		UID:        e.UID,
		Source:     e.Source,
		Input:      e.Input,
		Reference:  time.Unix(e.Reference, 0).In(loc).Format(time.RFC3339),
		Timezone:   e.Timezone,
		Timestamps: timestamps,
		CreatedTs:  e.CreatedTs,
	}
}

func formatTimestamps(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format(time.RFC3339)
	}
	return out
}

func unixSeconds(ts []time.Time) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.Unix()
	}
	return out
}

func queryInt(c echo.Context, name string, defaultValue int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}

func toErrorResponse(err error) *ErrorResponse {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return &ErrorResponse{Code: string(appErr.Code), Message: appErr.Message}
	}
	return &ErrorResponse{Code: string(apperrors.ErrCodeInternal), Message: "internal error"}
}

func writeError(c echo.Context, err error) error {
	status := apperrors.HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("api request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return c.JSON(status, toErrorResponse(err))
}
