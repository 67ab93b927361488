// Package lexicon holds the static vocabulary used to interpret test-lab
// commands: service, test-type, action and context keyword synonyms, the
// annotation table, the service dependency graph and advisory texts.
//
// Every table is built once at package initialization and exposed through
// read-only accessors. Callers receive copies, so no runtime mutation path
// exists.
package lexicon

// Category identifies the kind of an extracted entity.
type Category string

const (
	CategoryService   Category = "service"
	CategoryTestType  Category = "testType"
	CategoryAction    Category = "action"
	CategoryParameter Category = "parameter"
	CategoryContext   Category = "context"
)

// Categories returns the entity categories in extraction order.
func Categories() []Category {
	return []Category{
		CategoryService,
		CategoryTestType,
		CategoryAction,
		CategoryParameter,
		CategoryContext,
	}
}

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// Services.
const (
	ServiceUser         = "user-service"
	ServiceProduct      = "product-service"
	ServiceOrder        = "order-service"
	ServiceNotification = "notification-service"
	ServiceGateway      = "gateway-service"

	// AllServices is the sentinel meaning "every service in the lab".
	AllServices = "all-services"
)

// Test types.
const (
	TestUnit        = "UNIT_TEST"
	TestIntegration = "INTEGRATION_TEST"
	TestAPI         = "API_TEST"
	TestPerformance = "PERFORMANCE_TEST"
	TestSecurity    = "SECURITY_TEST"
	TestContract    = "CONTRACT_TEST"
	TestChaos       = "CHAOS_TEST"
	TestSmoke       = "SMOKE_TEST"
	TestRegression  = "REGRESSION_TEST"
	TestEndToEnd    = "END_TO_END_TEST"
	TestLoad        = "LOAD_TEST"
	TestStress      = "STRESS_TEST"
	TestPenetration = "PENETRATION_TEST"
	TestDiagnostic  = "DIAGNOSTIC_TEST"
	TestHealthCheck = "HEALTH_CHECK"
	TestTypeUnknown = "UNKNOWN"
)

// Actions.
const (
	ActionRun      = "run"
	ActionAnalyze  = "analyze"
	ActionGenerate = "generate"
	ActionOptimize = "optimize"
	ActionCheck    = "check"
	ActionStop     = "stop"
	ActionStatus   = "status"
)

// Context keyword groups.
const (
	ContextUrgency  = "urgency"
	ContextScope    = "scope"
	ContextPriority = "priority"
	ContextTiming   = "timing"
	ContextCaution  = "caution"
)

// Entry is one canonical value and the phrases that refer to it.
type Entry struct {
	Canonical string
	Synonyms  []string
}

// Table is an ordered list of entries. Order is significant: it decides
// tie-breaks between equally confident matches.
type Table struct {
	entries []Entry
}

func newTable(entries ...Entry) Table {
	return Table{entries: entries}
}

// Len returns the number of canonical values.
func (t Table) Len() int {
	return len(t.entries)
}

// Canonicals returns the canonical values in declaration order.
func (t Table) Canonicals() []string {
	out := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.Canonical)
	}
	return out
}

// Synonyms returns a copy of the synonyms registered for canonical.
func (t Table) Synonyms(canonical string) ([]string, bool) {
	for _, e := range t.entries {
		if e.Canonical == canonical {
			return append([]string(nil), e.Synonyms...), true
		}
	}
	return nil, false
}

// Range calls fn for every (canonical, synonym) pair in declaration order.
// Iteration stops when fn returns false.
func (t Table) Range(fn func(canonical, synonym string) bool) {
	for _, e := range t.entries {
		for _, s := range e.Synonyms {
			if !fn(e.Canonical, s) {
				return
			}
		}
	}
}

// Lexicon bundles every static table the interpreter reads.
type Lexicon struct {
	services    Table
	testTypes   Table
	actions     Table
	contexts    Table
	annotations map[string]string
	deps        map[string][]string
	serviceTips map[string][]string
	testTips    map[string][]string
}

var std = build()

// Default returns the process-wide lexicon.
func Default() *Lexicon {
	return std
}

// Table returns the synonym table for a category. The parameter category
// has no table and yields an empty one.
func (l *Lexicon) Table(c Category) Table {
	switch c {
	case CategoryService:
		return l.services
	case CategoryTestType:
		return l.testTypes
	case CategoryAction:
		return l.actions
	case CategoryContext:
		return l.contexts
	default:
		return Table{}
	}
}

// Annotation maps an "@name" token to its canonical test type.
func (l *Lexicon) Annotation(token string) (string, bool) {
	v, ok := l.annotations[token]
	return v, ok
}

// Services returns the concrete services, excluding the AllServices
// sentinel, in declaration order.
func (l *Lexicon) Services() []string {
	out := make([]string, 0, l.services.Len())
	for _, s := range l.services.Canonicals() {
		if s != AllServices {
			out = append(out, s)
		}
	}
	return out
}

// Dependencies returns the services that service calls directly.
func (l *Lexicon) Dependencies(service string) []string {
	return append([]string(nil), l.deps[service]...)
}

// ServiceAdvice returns operator advice for testing service.
func (l *Lexicon) ServiceAdvice(service string) []string {
	return append([]string(nil), l.serviceTips[service]...)
}

// TestTypeAdvice returns operator advice for running testType.
func (l *Lexicon) TestTypeAdvice(testType string) []string {
	return append([]string(nil), l.testTips[testType]...)
}
