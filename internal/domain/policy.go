package domain

import "time"

// Constants fixed by the upstream data pipeline.
const (
	// StatusInForce is the validationStatus literal marking a policy as
	// currently active. Scope resolution excludes everything else.
	StatusInForce = "现行有效"

	// NationalRegionName is the GeographicRegion node representing the
	// nationwide baseline.
	NationalRegionName = "全国各省、自治区、直辖市、新疆生产建设兵团"
)

// Administrative region levels.
const (
	RegionLevelNational   = 0
	RegionLevelProvincial = 1
	RegionLevelMunicipal  = 2
)

// Policy is one governmental document, identified by its citation code.
type Policy struct {
	Citation         string     `json:"citation"`
	Title            string     `json:"title"`
	DocumentNumber   string     `json:"document_number,omitempty"`
	AnnounceDate     *time.Time `json:"announce_date,omitempty"`
	ImplementDate    *time.Time `json:"implement_date,omitempty"`
	Level            string     `json:"level,omitempty"`
	ValidationStatus string     `json:"validation_status,omitempty"`
	FullText         string     `json:"-"`
}

// ToolUse is one APPLIES_TOOL edge: a policy applying a named instrument,
// with the quantitative detail carried on the edge (the same tool can have
// different parameters per policy).
type ToolUse struct {
	ToolName           string `json:"tool_name"`
	Category           string `json:"category,omitempty"`
	QuantitativeDetail string `json:"quantitative_detail,omitempty"`
}

// ScopedPolicy is a policy inside a resolved scope together with its tool
// applications.
type ScopedPolicy struct {
	Policy
	Tools []ToolUse `json:"tools,omitempty"`
}

// Region is a GeographicRegion node. ParentName is resolved one hop up
// IS_SUBREGION_OF; empty when the region has no parent in the graph.
type Region struct {
	Name       string `json:"name"`
	Code       string `json:"code,omitempty"`
	Level      int    `json:"level"`
	ParentName string `json:"parent_name,omitempty"`
}

// Filters are the optional categorical predicates of a scope resolution.
// Empty fields match everything.
type Filters struct {
	Topic        string `json:"policy_topic,omitempty"`
	Beneficiary  string `json:"target_beneficiary_name,omitempty"`
	ToolCategory string `json:"policy_tool_category,omitempty"`
}

// Describe renders the active filters for prompts and logs, "所有相关主题、
// 受益人和工具类别" when nothing is set.
func (f Filters) Describe(regionName string) string {
	parts := "分析区域 '" + regionName + "'"
	extra := false
	if f.Topic != "" {
		parts += "，政策主题 '" + f.Topic + "'"
		extra = true
	}
	if f.Beneficiary != "" {
		parts += "，主要受益对象 '" + f.Beneficiary + "'"
		extra = true
	}
	if f.ToolCategory != "" {
		parts += "，政策工具类别 '" + f.ToolCategory + "'"
		extra = true
	}
	if !extra {
		parts += " (所有相关主题、受益人和工具类别)"
	}
	return parts
}
