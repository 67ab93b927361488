// Package mapper turns a classified, enriched intent into an executable
// action by scoring action templates and resolving their parameters.
package mapper

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/enrich"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/nlp"
)

// Priorities of an action.
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
)

// ParamError carries the failure message of an ERROR action.
const ParamError = "error"

const (
	baseTemplateScore   = 0.5
	requiredKeyBonus    = 0.2
	preferredTestBonus  = 0.3
	preferredSvcBonus   = 0.2
	unknownServiceName  = "unknown"
	unknownDuration     = "unknown"
	unknownDescription  = "Unknown action - unable to map intent"
	errorDescriptionFmt = "Error mapping intent: %s"
)

// ExecutableAction is the final, always well-formed output of the
// interpreter.
type ExecutableAction struct {
	ActionType        string         `json:"actionType"`
	TestType          string         `json:"testType"`
	ServiceName       string         `json:"serviceName"`
	Parameters        map[string]any `json:"parameters"`
	Confidence        float64        `json:"confidence"`
	Description       string         `json:"description"`
	EstimatedDuration string         `json:"estimatedDuration"`
	Priority          string         `json:"priority"`
}

// UnknownAction is returned for intents without templates.
func UnknownAction() ExecutableAction {
	return ExecutableAction{
		ActionType:        ActionUnknown,
		TestType:          lexicon.TestTypeUnknown,
		ServiceName:       unknownServiceName,
		Parameters:        map[string]any{},
		Confidence:        0,
		Description:       unknownDescription,
		EstimatedDuration: unknownDuration,
		Priority:          PriorityNormal,
	}
}

// ErrorAction is returned when mapping fails. The message is carried in
// parameters["error"] and in the description.
func ErrorAction(msg string) ExecutableAction {
	return ExecutableAction{
		ActionType:        ActionError,
		TestType:          lexicon.TestTypeUnknown,
		ServiceName:       unknownServiceName,
		Parameters:        map[string]any{ParamError: msg},
		Confidence:        0,
		Description:       fmt.Sprintf(errorDescriptionFmt, msg),
		EstimatedDuration: unknownDuration,
		Priority:          PriorityNormal,
	}
}

// Mapper selects and fills action templates. It is immutable after
// construction and safe for concurrent use.
type Mapper struct {
	templates map[nlp.IntentType][]Template
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithTemplates replaces the built-in template table.
func WithTemplates(templates map[nlp.IntentType][]Template) Option {
	return func(m *Mapper) {
		m.templates = templates
	}
}

// New creates a Mapper over the built-in templates.
func New(opts ...Option) *Mapper {
	m := &Mapper{templates: DefaultTemplates()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map builds the action for an intent. The returned action is always
// usable: intents without templates yield UnknownAction, and a failure
// yields an ErrorAction together with the error.
func (m *Mapper) Map(intent nlp.ClassifiedIntent, entities nlp.EntitySet, enriched enrich.Result) (action ExecutableAction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mapping %s: %v", intent.Type, r)
			action = ErrorAction(err.Error())
		}
	}()

	templates := m.templates[intent.Type]
	if len(templates) == 0 {
		return UnknownAction(), nil
	}

	intentParams := nlp.IntentParameters(entities, intent.Confidence)
	tmpl, score := bestTemplate(templates, intentParams)
	if verr := tmpl.validate(); verr != nil {
		verr = fmt.Errorf("mapping %s: %w", intent.Type, verr)
		return ErrorAction(verr.Error()), verr
	}

	explicit := nlp.ExplicitParameters(entities)
	testType := primaryTestType(intent.Type, entities)
	service := primaryService(entities)
	level := priority(entities, enriched, explicit)

	action = ExecutableAction{
		ActionType:        tmpl.ActionType,
		TestType:          testType,
		ServiceName:       service,
		Parameters:        resolveParameters(tmpl, intentParams, enriched, explicit, level),
		Confidence:        enriched.Confidence,
		Description:       describe(tmpl.Verb, testType, service),
		EstimatedDuration: estimateDuration(tmpl.BaseMinutes, testType, service),
		Priority:          level,
	}

	log.Debug().
		Str("action_type", action.ActionType).
		Float64("template_score", score).
		Str("service", action.ServiceName).
		Str("test_type", action.TestType).
		Msg("action mapped")

	return action, nil
}

func (t Template) validate() error {
	if t.ActionType == "" {
		return fmt.Errorf("template has no action type")
	}
	if t.BaseMinutes < 0 {
		return fmt.Errorf("template %s has negative base minutes %d", t.ActionType, t.BaseMinutes)
	}
	return nil
}

// bestTemplate returns the highest scoring template. The first declared
// template wins ties.
func bestTemplate(templates []Template, intentParams map[string]any) (Template, float64) {
	best, bestScore := templates[0], scoreTemplate(templates[0], intentParams)
	for _, t := range templates[1:] {
		if s := scoreTemplate(t, intentParams); s > bestScore {
			best, bestScore = t, s
		}
	}
	return best, bestScore
}

func scoreTemplate(t Template, intentParams map[string]any) float64 {
	score := baseTemplateScore
	for _, key := range t.Required {
		if values, _ := intentParams[key].([]string); len(values) > 0 {
			score += requiredKeyBonus
		}
	}

	testTypes, _ := intentParams[nlp.KeyTestTypes].([]string)
	for _, preferred := range t.PreferredTestTypes {
		if slices.Contains(testTypes, preferred) {
			score += preferredTestBonus
		}
	}

	services, _ := intentParams[nlp.KeyServices].([]string)
	for _, preferred := range t.PreferredServices {
		if slices.Contains(services, preferred) {
			score += preferredSvcBonus
		}
	}
	return min(score, 1.0)
}

// resolveParameters layers, lowest precedence first: mapped fields,
// template defaults, enrichment defaults and scope, priority defaults,
// explicit command parameters. A resolved priority replaces any raw P<n>.
func resolveParameters(t Template, intentParams map[string]any, enriched enrich.Result, explicit map[string]any, level string) map[string]any {
	params := make(map[string]any)
	for field, key := range t.Fields {
		if v, ok := firstValue(intentParams[key]); ok {
			params[field] = v
		}
	}
	maps.Copy(params, t.Defaults)
	maps.Copy(params, enriched.Defaults)
	if enriched.Context.Scope != "" {
		params[enrich.ParamScope] = string(enriched.Context.Scope)
	}
	maps.Copy(params, priorityDefaults[level])
	maps.Copy(params, explicit)
	if level != PriorityNormal {
		params[enrich.ParamPriority] = level
	} else {
		delete(params, enrich.ParamPriority)
	}
	return params
}

func firstValue(v any) (any, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case []string:
		if len(v) == 0 {
			return nil, false
		}
		return v[0], true
	case string:
		return v, v != ""
	default:
		return v, true
	}
}

func primaryTestType(intent nlp.IntentType, entities nlp.EntitySet) string {
	if tt, ok := entities.First(lexicon.CategoryTestType); ok {
		return tt
	}
	if tt, ok := fallbackTestTypes[intent]; ok {
		return tt
	}
	return lexicon.TestTypeUnknown
}

func primaryService(entities nlp.EntitySet) string {
	if s, ok := entities.First(lexicon.CategoryService); ok {
		return s
	}
	return lexicon.AllServices
}

// priority prefers an explicit P<n>, then the timing-derived priority,
// then any priority keyword.
func priority(entities nlp.EntitySet, enriched enrich.Result, explicit map[string]any) string {
	if p, ok := explicit[nlp.ParamPriority].(string); ok {
		return explicitPriority(p)
	}
	if p, ok := enriched.Defaults[enrich.ParamPriority].(string); ok {
		return p
	}
	if entities.Contains(lexicon.CategoryContext, lexicon.ContextPriority) {
		return PriorityMedium
	}
	return PriorityNormal
}

// explicitPriority maps P0 and P1 to HIGH, P2 to MEDIUM and anything
// lower to LOW.
func explicitPriority(p string) string {
	n, err := strconv.Atoi(strings.TrimPrefix(p, "P"))
	switch {
	case err != nil:
		return PriorityNormal
	case n <= 1:
		return PriorityHigh
	case n == 2:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func estimateDuration(base int, testType, service string) string {
	minutes := base
	if b, ok := durationBounds[testType]; ok {
		if b.ceiling > 0 {
			minutes = min(minutes, b.ceiling)
		}
		minutes = max(minutes, b.floor)
	}
	if service == lexicon.AllServices {
		minutes *= allServicesMultiplier
	}
	return fmt.Sprintf("%d minutes", minutes)
}

func describe(verb, testType, service string) string {
	var b strings.Builder
	b.WriteString(verb)
	if testType != lexicon.TestTypeUnknown {
		b.WriteString(" ")
		b.WriteString(strings.ToLower(strings.ReplaceAll(testType, "_", " ")))
	}
	if service == lexicon.AllServices {
		b.WriteString(" across all services")
	} else {
		b.WriteString(" for ")
		b.WriteString(service)
	}
	return b.String()
}
