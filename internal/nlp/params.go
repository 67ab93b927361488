package nlp

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
)

// Keys of the structured intent parameter map.
const (
	KeyServices         = "services"
	KeyServiceName      = "serviceName"
	KeyTestTypes        = "testTypes"
	KeyActions          = "actions"
	KeyContext          = "context"
	KeyParameters       = "parameters"
	KeyIntentConfidence = "intentConfidence"
)

// maxTimeoutSeconds bounds an explicit timeout; longer values are dropped.
const maxTimeoutSeconds = 24 * 3600

var durationParts = regexp.MustCompile(`^(\d+)\s*([a-z]+)$`)

// IntentParameters flattens entities into the structured parameter map the
// enricher and mapper consume. Explicit command parameters are normalized:
// timeouts become "<n>s" and retries become integers.
func IntentParameters(entities EntitySet, intentConfidence float64) map[string]any {
	params := map[string]any{
		KeyServices:         entities.Values(lexicon.CategoryService),
		KeyTestTypes:        entities.Values(lexicon.CategoryTestType),
		KeyActions:          entities.Values(lexicon.CategoryAction),
		KeyContext:          entities.Values(lexicon.CategoryContext),
		KeyIntentConfidence: intentConfidence,
	}
	if first, ok := entities.First(lexicon.CategoryService); ok {
		params[KeyServiceName] = first
	}

	explicit := ExplicitParameters(entities)
	if len(explicit) > 0 {
		params[KeyParameters] = explicit
	}
	return params
}

// ExplicitParameters returns the timeout, retries and priority values typed
// in the command, normalized for direct use as action parameters.
func ExplicitParameters(entities EntitySet) map[string]any {
	out := make(map[string]any)
	for _, e := range entities.Get(lexicon.CategoryParameter) {
		switch e.Value {
		case ParamTimeout:
			if secs, ok := timeoutSeconds(e.Text); ok {
				out[ParamTimeout] = fmt.Sprintf("%ds", secs)
			}
		case ParamRetries:
			if m := retriesPattern.FindStringSubmatch(e.Text); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					out[ParamRetries] = n
				}
			}
		case ParamPriority:
			out[ParamPriority] = e.Text
		}
	}
	return out
}

// timeoutSeconds converts "30 seconds", "5 mins" or "2 hrs" to seconds.
// Values above one day are rejected.
func timeoutSeconds(text string) (int, bool) {
	m := durationParts.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	var unit int
	switch m[2] {
	case "second", "seconds", "sec", "secs":
		unit = 1
	case "minute", "minutes", "min", "mins":
		unit = 60
	case "hour", "hours", "hr", "hrs":
		unit = 3600
	default:
		return 0, false
	}
	if n > maxTimeoutSeconds/unit {
		return 0, false
	}
	return n * unit, true
}
