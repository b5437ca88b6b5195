package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dailyforge/dailies-api/internal/dailies"
	"github.com/dailyforge/dailies-api/internal/entities"
	"github.com/dailyforge/dailies-api/internal/errors"
	"github.com/dailyforge/dailies-api/internal/filter"
	"github.com/dailyforge/dailies-api/internal/handlers/api"
	prepservice "github.com/dailyforge/dailies-api/internal/services/prep"
)

// stubService cans one response per operation.
type stubService struct {
	renderOut *prepservice.RenderOutput
	renderErr error
	acceptIn  *prepservice.AcceptInput
	acceptOut *prepservice.AcceptOutput
	acceptErr error
	dropOut   *prepservice.ValidateDropOutput
	dropErr   error
	queryOut  *prepservice.BrowseQueryOutput
	queryErr  error
}

func (s *stubService) Render(_ context.Context, _ *prepservice.RenderInput) (*prepservice.RenderOutput, error) {
	return s.renderOut, s.renderErr
}

func (s *stubService) Accept(_ context.Context, input *prepservice.AcceptInput) (*prepservice.AcceptOutput, error) {
	s.acceptIn = input
	return s.acceptOut, s.acceptErr
}

func (s *stubService) ValidateDrop(_ context.Context, _ *prepservice.ValidateDropInput) (*prepservice.ValidateDropOutput, error) {
	return s.dropOut, s.dropErr
}

func (s *stubService) BrowseQuery(_ context.Context, _ *prepservice.BrowseQueryInput) (*prepservice.BrowseQueryOutput, error) {
	return s.queryOut, s.queryErr
}

var _ prepservice.Service = (*stubService)(nil)

func setupRouter(t *testing.T, svc prepservice.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler, err := api.New(&api.Config{Service: svc})
	require.NoError(t, err)

	engine := gin.New()
	handler.RegisterRoutes(engine)
	return engine
}

func TestRender_OK(t *testing.T) {
	svc := &stubService{
		renderOut: &prepservice.RenderOutput{
			Template: &dailies.Template{CanAccept: true},
			Notices:  []string{"state was reset"},
		},
	}
	router := setupRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/actors/actor-1/preparations", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Template struct {
			CanAccept bool `json:"can_accept"`
		} `json:"template"`
		Notices []string `json:"notices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Template.CanAccept)
	assert.Equal(t, []string{"state was reset"}, body.Notices)
}

func TestRender_NotFound(t *testing.T) {
	svc := &stubService{renderErr: errors.NotFoundf("actor missing")}
	router := setupRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/actors/missing/preparations", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestAccept_OK(t *testing.T) {
	svc := &stubService{
		acceptOut: &prepservice.AcceptOutput{Summary: "Daily Preparations", AddedItemIDs: []string{"item-1"}},
	}
	router := setupRouter(t, svc)

	body := `{"values": {"one": {"choice": "a"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actors/actor-1/preparations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "item-1")

	require.NotNil(t, svc.acceptIn)
	assert.Equal(t, "actor-1", svc.acceptIn.ActorID)
	assert.Equal(t, dailies.StringValue("a"), svc.acceptIn.Values["one"]["choice"].Value)
}

func TestAccept_BadBody(t *testing.T) {
	router := setupRouter(t, &stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actors/actor-1/preparations", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccept_AlertPending(t *testing.T) {
	svc := &stubService{acceptErr: errors.FailedPrecondition("an alert must be acknowledged")}
	router := setupRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actors/actor-1/preparations", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestValidateDrop_OK(t *testing.T) {
	svc := &stubService{
		dropOut: &prepservice.ValidateDropOutput{
			Item:  &entities.Item{UUID: "uuid-1", Name: "Quick Jump"},
			Value: dailies.DropValue{UUID: "uuid-1", Name: "Quick Jump"},
		},
	}
	router := setupRouter(t, svc)

	body := `{"dailyKey": "drop", "slug": "feat", "itemUuid": "uuid-1"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actors/actor-1/preparations/drops", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quick Jump")
}

func TestValidateDrop_MissingFields(t *testing.T) {
	router := setupRouter(t, &stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/actors/actor-1/preparations/drops", strings.NewReader(`{"slug": "feat"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBrowseQuery_OK(t *testing.T) {
	levelMax := 4
	svc := &stubService{
		queryOut: &prepservice.BrowseQueryOutput{
			Query: &filter.Query{Kind: filter.KindFeat, LevelMax: &levelMax},
		},
	}
	router := setupRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/actors/actor-1/preparations/rows/drop/feat/query", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level_max":4`)
}

func TestHealthz(t *testing.T) {
	router := setupRouter(t, &stubService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
