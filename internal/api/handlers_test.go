package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/classifystack/drift-engine/internal/alerting"
	"github.com/classifystack/drift-engine/internal/models"
	"github.com/classifystack/drift-engine/internal/store"
)

type fakeService struct {
	report  models.DriftReport
	alert   *models.Alert
	alerts  []models.Alert
	reports []models.DriftReport
	actions []models.Action

	ackReportID int64
	ackType     models.ActionType
	ackErr      error
}

func (f *fakeService) RunAnalysis(context.Context) (models.DriftReport, *models.Alert) {
	return f.report, f.alert
}

func (f *fakeService) ActiveAlerts(context.Context, int) ([]models.Alert, error) {
	return f.alerts, nil
}

func (f *fakeService) ReportHistory(context.Context, int) ([]models.DriftReport, error) {
	return f.reports, nil
}

func (f *fakeService) ReportSummary(ctx context.Context, limit int) (alerting.Summary, error) {
	return alerting.Summarize(f.reports), nil
}

func (f *fakeService) ActionHistory(context.Context, int) ([]models.Action, error) {
	return f.actions, nil
}

func (f *fakeService) Acknowledge(_ context.Context, reportID int64, actionType models.ActionType, _ map[string]any, performedBy string) (models.Action, error) {
	if f.ackErr != nil {
		return models.Action{}, f.ackErr
	}
	f.ackReportID = reportID
	f.ackType = actionType
	return models.Action{ID: 1, DriftReportID: reportID, ActionType: actionType, PerformedBy: performedBy}, nil
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	registerRoutes(router, NewHandlers(nil, service))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeService{})
	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRunAnalysisEndpoint(t *testing.T) {
	service := &fakeService{
		report: models.DriftReport{Status: models.StatusCompleted, Severity: models.SeverityAlert, OverallDriftScore: 0.22},
		alert:  &models.Alert{Severity: models.SeverityAlert, Message: "[ALERT] Drift detected"},
	}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/drift/run", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Report models.DriftReport `json:"report"`
		Alert  *models.Alert      `json:"alert"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Report.Severity != models.SeverityAlert {
		t.Fatalf("report severity = %s", body.Report.Severity)
	}
	if body.Alert == nil {
		t.Fatal("alert missing from response")
	}
}

func TestRunAnalysisOmitsNilAlert(t *testing.T) {
	service := &fakeService{report: models.DriftReport{Status: models.StatusCompleted}}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/drift/run", "")
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["alert"]; ok {
		t.Fatal("alert key present for OK run")
	}
}

func TestListAlertsEndpoint(t *testing.T) {
	service := &fakeService{alerts: []models.Alert{{ReportID: 2, Severity: models.SeverityWarning}}}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/alerts?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count  int            `json:"count"`
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 || len(body.Alerts) != 1 {
		t.Fatalf("body = %+v", body)
	}
}

func TestAcknowledgeEndpoint(t *testing.T) {
	service := &fakeService{}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/alerts/12/acknowledge",
		`{"action_type":"retrain","performed_by":"mlops"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if service.ackReportID != 12 || service.ackType != models.ActionRetrain {
		t.Fatalf("service received id=%d type=%s", service.ackReportID, service.ackType)
	}
}

func TestAcknowledgeValidation(t *testing.T) {
	router := newTestRouter(&fakeService{})

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad id", "/api/v1/alerts/abc/acknowledge", `{"action_type":"retrain"}`, http.StatusBadRequest},
		{"missing action type", "/api/v1/alerts/1/acknowledge", `{}`, http.StatusBadRequest},
		{"unknown action type", "/api/v1/alerts/1/acknowledge", `{"action_type":"celebrate"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := doRequest(t, router, http.MethodPost, tc.path, tc.body)
		if rec.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestAcknowledgeUnknownReport(t *testing.T) {
	service := &fakeService{ackErr: fmt.Errorf("acknowledge report 99: %w", store.ErrReportNotFound)}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/alerts/99/acknowledge",
		`{"action_type":"acknowledge"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestReportSummaryEndpoint(t *testing.T) {
	service := &fakeService{reports: []models.DriftReport{
		{Status: models.StatusCompleted, Severity: models.SeverityOK, OverallDriftScore: 0.02},
	}}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/reports/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var summary alerting.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Reports != 1 || summary.Completed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestListActionsEndpoint(t *testing.T) {
	service := &fakeService{actions: []models.Action{{ID: 1, ActionType: models.ActionRetrain}}}
	router := newTestRouter(service)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/actions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("count = %d, want 1", body.Count)
	}
}
