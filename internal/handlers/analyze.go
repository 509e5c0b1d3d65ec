package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haolun/policygraph-backend/internal/analysis"
	"github.com/haolun/policygraph-backend/internal/domain"
	"github.com/haolun/policygraph-backend/internal/platform/apierr"
	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

// Analyzer is the one operation this surface exposes.
type Analyzer interface {
	AnalyzePolicyStrength(ctx context.Context, req analysis.Request) (*domain.Report, error)
}

type AnalyzeHandler struct {
	log      *logger.Logger
	analyzer Analyzer
	profiles map[string]domain.ThresholdConfig
}

func NewAnalyzeHandler(log *logger.Logger, analyzer Analyzer, profiles map[string]domain.ThresholdConfig) *AnalyzeHandler {
	return &AnalyzeHandler{
		log:      log.With("handler", "AnalyzeHandler"),
		analyzer: analyzer,
		profiles: profiles,
	}
}

type analyzeRequest struct {
	RegionName            string          `json:"region_name"`
	PolicyTopic           string          `json:"policy_topic"`
	TargetBeneficiaryName string          `json:"target_beneficiary_name"`
	PolicyToolCategory    string          `json:"policy_tool_category"`
	ThresholdProfile      string          `json:"threshold_profile"`
	UserThresholds        json.RawMessage `json:"user_thresholds"`
	IncludeNarrative      *bool           `json:"include_narrative"`
}

// AnalyzePolicyStrength handles POST /api/analyze_policy_strength. Thresholds
// come from a named profile, the request body, or both; body values override
// profile values field by field. Unknown threshold keys are rejected so typos
// fail loudly instead of silently loosening the assessment.
func (h *AnalyzeHandler) AnalyzePolicyStrength(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.RegionName == "" {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, fmt.Errorf("region_name is required"))
		return
	}

	thresholds, err := h.resolveThresholds(req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, err)
		return
	}

	includeNarrative := true
	if req.IncludeNarrative != nil {
		includeNarrative = *req.IncludeNarrative
	}

	report, err := h.analyzer.AnalyzePolicyStrength(c.Request.Context(), analysis.Request{
		RegionName: req.RegionName,
		Filters: domain.Filters{
			Topic:        req.PolicyTopic,
			Beneficiary:  req.TargetBeneficiaryName,
			ToolCategory: req.PolicyToolCategory,
		},
		Thresholds:       thresholds,
		IncludeNarrative: includeNarrative,
	})
	if err != nil {
		h.log.Error("analysis failed", "region", req.RegionName, "error", err.Error())
		RespondError(c, apierr.StatusOf(err), apierr.CodeOf(err), err)
		return
	}
	RespondOK(c, report)
}

func (h *AnalyzeHandler) resolveThresholds(req analyzeRequest) (domain.ThresholdConfig, error) {
	var thresholds domain.ThresholdConfig
	if req.ThresholdProfile != "" {
		profile, ok := h.profiles[req.ThresholdProfile]
		if !ok {
			return thresholds, fmt.Errorf("unknown threshold profile %q", req.ThresholdProfile)
		}
		thresholds = profile
	}
	if len(req.UserThresholds) > 0 && !bytes.Equal(req.UserThresholds, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(req.UserThresholds))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&thresholds); err != nil {
			return thresholds, fmt.Errorf("invalid user_thresholds: %w", err)
		}
	}
	return thresholds, nil
}
