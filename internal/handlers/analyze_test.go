package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/haolun/policygraph-backend/internal/analysis"
	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/apierr"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

type fakeAnalyzer struct {
	lastReq analysis.Request
	report  *domain.Report
	err     error
}

func (f *fakeAnalyzer) AnalyzePolicyStrength(ctx context.Context, req analysis.Request) (*domain.Report, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestRouter(t *testing.T, analyzer Analyzer, profiles map[string]domain.ThresholdConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	r := gin.New()
	h := NewAnalyzeHandler(log, analyzer, profiles)
	r.POST("/api/analyze_policy_strength", h.AnalyzePolicyStrength)
	return r
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze_policy_strength", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeBindsFiltersAndThresholds(t *testing.T) {
	fake := &fakeAnalyzer{report: &domain.Report{}}
	r := newTestRouter(t, fake, nil)

	w := postJSON(r, `{
		"region_name": "某省某市",
		"policy_topic": "融资支持",
		"target_beneficiary_name": "小微企业",
		"policy_tool_category": "财政支持",
		"user_thresholds": {"min_policies": 5, "min_distinct_tools": 3}
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	req := fake.lastReq
	if req.RegionName != "某省某市" {
		t.Fatalf("region not bound: %+v", req)
	}
	if req.Filters.Topic != "融资支持" || req.Filters.Beneficiary != "小微企业" || req.Filters.ToolCategory != "财政支持" {
		t.Fatalf("filters not bound: %+v", req.Filters)
	}
	if req.Thresholds.MinPolicies == nil || *req.Thresholds.MinPolicies != 5 {
		t.Fatalf("min_policies not bound: %+v", req.Thresholds)
	}
	if req.Thresholds.MinDistinctTools == nil || *req.Thresholds.MinDistinctTools != 3 {
		t.Fatalf("min_distinct_tools not bound: %+v", req.Thresholds)
	}
	if !req.IncludeNarrative {
		t.Fatal("narrative should default to enabled")
	}
}

func TestAnalyzeRejectsUnknownThresholdKeys(t *testing.T) {
	fake := &fakeAnalyzer{report: &domain.Report{}}
	r := newTestRouter(t, fake, nil)

	w := postJSON(r, `{"region_name": "某省", "user_thresholds": {"min_polices": 5}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown threshold key, got %d: %s", w.Code, w.Body.String())
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	if envelope.Error.Code != apierr.CodeInvalidRequest {
		t.Fatalf("wrong error code: %+v", envelope)
	}
}

func TestAnalyzeRequiresRegionName(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{report: &domain.Report{}}, nil)
	if w := postJSON(r, `{"user_thresholds": {"min_policies": 1}}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without region_name, got %d", w.Code)
	}
}

func TestAnalyzeProfileWithBodyOverride(t *testing.T) {
	five, one := 5, 1
	fake := &fakeAnalyzer{report: &domain.Report{}}
	r := newTestRouter(t, fake, map[string]domain.ThresholdConfig{
		"strict": {MinPolicies: &five, MinDistinctTools: &one},
	})

	w := postJSON(r, `{
		"region_name": "某省",
		"threshold_profile": "strict",
		"user_thresholds": {"min_policies": 10}
	}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if fake.lastReq.Thresholds.MinPolicies == nil || *fake.lastReq.Thresholds.MinPolicies != 10 {
		t.Fatalf("body should override profile: %+v", fake.lastReq.Thresholds)
	}
	if fake.lastReq.Thresholds.MinDistinctTools == nil || *fake.lastReq.Thresholds.MinDistinctTools != 1 {
		t.Fatalf("profile field should survive when body omits it: %+v", fake.lastReq.Thresholds)
	}
}

func TestAnalyzeUnknownProfile(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{report: &domain.Report{}}, nil)
	if w := postJSON(r, `{"region_name": "某省", "threshold_profile": "nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown profile, got %d", w.Code)
	}
}

func TestAnalyzeMapsDomainErrors(t *testing.T) {
	fake := &fakeAnalyzer{err: apierr.RegionNotFound("不存在的地区")}
	r := newTestRouter(t, fake, nil)

	w := postJSON(r, `{"region_name": "不存在的地区"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal error envelope: %v", err)
	}
	if envelope.Error.Code != apierr.CodeRegionNotFound {
		t.Fatalf("wrong error code: %+v", envelope)
	}
}

func TestAnalyzeNarrativeOptOut(t *testing.T) {
	fake := &fakeAnalyzer{report: &domain.Report{}}
	r := newTestRouter(t, fake, nil)

	if w := postJSON(r, `{"region_name": "某省", "include_narrative": false}`); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if fake.lastReq.IncludeNarrative {
		t.Fatal("narrative opt-out not honored")
	}
}
