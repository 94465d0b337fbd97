package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// legacySectionTitle names the synthetic section wrapping a response body
// that predates the standardized envelope.
const legacySectionTitle = "Raw Output"

// Normalize converts one invocation outcome into the canonical AgentResult.
// It never returns an error: every outcome maps to an ok, degraded or failed
// result, and a failed result carries no payload.
func Normalize(agent domain.AgentDefinition, fileName string, outcome domain.InvocationOutcome) domain.AgentResult {
	result := newResult(agent, fileName)

	if !outcome.OK() {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = outcome.Failure.Reason()
		return result
	}

	envelope, raw, err := unwrapEnvelope(outcome.RawBody)
	if err != nil {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = err.Error()
		return result
	}

	if _, ok := envelope["sections"]; ok {
		normalizeStandardized(&result, envelope)
	} else {
		normalizeLegacy(&result, envelope, raw)
	}
	return result
}

// newResult builds the result skeleton: identity fields set, payload fields
// empty. Failed and blocked results are returned exactly like this.
func newResult(agent domain.AgentDefinition, fileName string) domain.AgentResult {
	return domain.AgentResult{
		AgentName:       agent.Name,
		DisplayTitle:    defaultDisplayTitle(agent),
		DisplayGroup:    agent.DisplayGroup,
		FileName:        fileName,
		Sections:        []domain.Section{},
		Insights:        []string{},
		Recommendations: []string{},
	}
}

// unwrapEnvelope peels the workflow delivery wrappers off a response body
// and returns the payload object plus its raw bytes. n8n delivers workflow
// output either as a top-level array of items or wrapped under a single
// "json" key; both wrappers are removed before shape detection.
func unwrapEnvelope(body json.RawMessage) (map[string]json.RawMessage, json.RawMessage, error) {
	raw := bytes.TrimSpace(body)

	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil, fmt.Errorf("malformed response array: %w", err)
		}
		raw = nil
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) > 0 && item[0] == '{' {
				raw = item
				break
			}
		}
		if raw == nil {
			return nil, nil, errors.New("response array contains no object")
		}
	}

	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil, errors.New("unexpected envelope structure")
	}

	envelope := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, fmt.Errorf("malformed response object: %w", err)
	}

	if inner, ok := envelope["json"]; ok && len(envelope) == 1 {
		inner = bytes.TrimSpace(inner)
		if len(inner) > 0 && inner[0] == '{' {
			unwrapped := map[string]json.RawMessage{}
			if err := json.Unmarshal(inner, &unwrapped); err != nil {
				return nil, nil, fmt.Errorf("malformed response object: %w", err)
			}
			return unwrapped, inner, nil
		}
	}

	return envelope, raw, nil
}

// normalizeStandardized decodes an envelope carrying the standardized shape:
// agent_name, optional display_title, and an ordered sections array.
func normalizeStandardized(result *domain.AgentResult, envelope map[string]json.RawMessage) {
	nameRaw, ok := envelope["agent_name"]
	if !ok {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = "missing required envelope key: agent_name"
		return
	}
	var envelopeName string
	if err := json.Unmarshal(nameRaw, &envelopeName); err != nil {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = "agent_name is not a string"
		return
	}

	if titleRaw, ok := envelope["display_title"]; ok {
		var title string
		if err := json.Unmarshal(titleRaw, &title); err == nil && title != "" {
			result.DisplayTitle = title
		}
	}

	sectionsRaw := bytes.TrimSpace(envelope["sections"])
	if len(sectionsRaw) == 0 || sectionsRaw[0] != '[' {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = "sections is not an array"
		return
	}
	var items []json.RawMessage
	if err := json.Unmarshal(sectionsRaw, &items); err != nil {
		result.Status = domain.ResultStatusFailed
		result.StatusReason = "sections is not an array"
		return
	}

	// Decode items in order. A malformed item keeps the sections parsed so
	// far and flags the result; an empty array is a valid ok result.
	result.Status = domain.ResultStatusOk
	for i, item := range items {
		var section domain.Section
		if err := json.Unmarshal(item, &section); err != nil {
			result.Status = domain.ResultStatusDegraded
			result.StatusReason = fmt.Sprintf("malformed section at index %d", i)
			break
		}
		result.Sections = append(result.Sections, section)
		harvestSection(result, section)
	}
}

// normalizeLegacy wraps a response without the standardized envelope keys in
// a single raw-output section and harvests whatever list fields it carries.
func normalizeLegacy(result *domain.AgentResult, envelope map[string]json.RawMessage, raw json.RawMessage) {
	result.Status = domain.ResultStatusDegraded
	result.StatusReason = "legacy_format"
	result.Sections = append(result.Sections, domain.Section{
		Type:  domain.SectionTypeText,
		Title: legacySectionTitle,
		Data:  raw,
	})

	result.Insights = append(result.Insights, stringList(envelope["insights"])...)
	result.Insights = append(result.Insights, stringList(envelope["actionable_insights"])...)
	result.Recommendations = append(result.Recommendations, stringList(envelope["recommendations"])...)
}

// harvestSection pulls insight and recommendation lines out of sections
// whose title names them.
func harvestSection(result *domain.AgentResult, section domain.Section) {
	title := strings.ToLower(section.Title)
	if strings.Contains(title, "insight") {
		result.Insights = append(result.Insights, flattenSectionData(section.Data)...)
	}
	if strings.Contains(title, "recommendation") {
		result.Recommendations = append(result.Recommendations, flattenSectionData(section.Data)...)
	}
}

// flattenSectionData renders section data as display lines: one per array
// element, or one per non-empty line of a string value. Other shapes carry
// no extractable lines.
func flattenSectionData(data json.RawMessage) []string {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		var lines []string
		for _, item := range items {
			item = bytes.TrimSpace(item)
			if len(item) == 0 {
				continue
			}
			if item[0] == '"' {
				var s string
				if err := json.Unmarshal(item, &s); err != nil {
					continue
				}
				if s = strings.TrimSpace(s); s != "" {
					lines = append(lines, s)
				}
				continue
			}
			var buf bytes.Buffer
			if err := json.Compact(&buf, item); err == nil {
				lines = append(lines, buf.String())
			}
		}
		return lines
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		var lines []string
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		return lines
	}
	return nil
}

// stringList decodes the string elements of a JSON array, skipping
// everything else. Missing or non-array values yield nothing.
func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// defaultDisplayTitle derives a human title when the envelope carries none:
// the configured description if set, else the agent name title-cased.
func defaultDisplayTitle(agent domain.AgentDefinition) string {
	if agent.Description != "" {
		return agent.Description
	}
	return titleCaseName(agent.Name)
}

// titleCaseName turns "offer_analysis_agent" into "Offer Analysis Agent".
func titleCaseName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, word := range words {
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
	return strings.Join(words, " ")
}
