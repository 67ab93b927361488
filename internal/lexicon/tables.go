package lexicon

func build() *Lexicon {
	return &Lexicon{
		services: newTable(
			Entry{ServiceUser, []string{"user service", "userservice", "user", "users", "user management", "user mgmt"}},
			Entry{ServiceProduct, []string{"product service", "productservice", "product", "products", "catalog", "inventory"}},
			Entry{ServiceOrder, []string{"order service", "orderservice", "order", "orders", "order management", "order mgmt"}},
			Entry{ServiceNotification, []string{"notification service", "notificationservice", "notification", "notifications", "notify", "alert"}},
			Entry{ServiceGateway, []string{"gateway service", "gatewayservice", "gateway", "api gateway", "api", "proxy"}},
			Entry{AllServices, []string{"all services", "every service", "entire system", "whole system"}},
		),
		testTypes: newTable(
			Entry{TestUnit, []string{"unit test", "unittest", "unit", "component test", "component"}},
			Entry{TestIntegration, []string{"integration test", "integrationtest", "integration", "integrated test"}},
			Entry{TestAPI, []string{"api test", "apitest", "api", "rest test", "resttest", "endpoint test"}},
			Entry{TestPerformance, []string{"performance test", "performancetest", "performance", "perf test", "perftest"}},
			Entry{TestSecurity, []string{"security test", "securitytest", "security", "sec test", "sectest"}},
			Entry{TestContract, []string{"contract test", "contracttest", "contract", "pact test", "pacttest"}},
			Entry{TestChaos, []string{"chaos test", "chaostest", "chaos", "chaos engineering", "fault injection"}},
			Entry{TestSmoke, []string{"smoke test", "smoketest", "smoke", "sanity test", "sanitytest"}},
			Entry{TestRegression, []string{"regression test", "regressiontest", "regression", "regression suite"}},
			Entry{TestEndToEnd, []string{"end to end test", "e2e test", "e2etest", "end to end", "e2e", "full test"}},
			Entry{TestLoad, []string{"load test", "loadtest", "load", "volume test", "volumetest"}},
			Entry{TestStress, []string{"stress test", "stresstest", "stress", "breaking test", "breakingtest"}},
			Entry{TestPenetration, []string{"penetration test", "penetrationtest", "pen test", "pentest", "penetration"}},
		),
		actions: newTable(
			Entry{ActionRun, []string{"run", "execute", "start", "launch", "trigger", "begin", "initiate"}},
			Entry{ActionAnalyze, []string{"analyze", "analyse", "investigate", "examine", "review", "assess", "evaluate"}},
			Entry{ActionGenerate, []string{"generate", "create", "make", "build", "produce", "develop"}},
			Entry{ActionOptimize, []string{"optimize", "optimise", "improve", "enhance", "refine", "tune"}},
			Entry{ActionCheck, []string{"check", "verify", "validate", "test", "monitor", "inspect"}},
			Entry{ActionStop, []string{"stop", "halt", "terminate", "cancel", "abort", "end"}},
			Entry{ActionStatus, []string{"status", "state", "health", "condition", "situation"}},
		),
		contexts: newTable(
			Entry{ContextUrgency, []string{"urgent", "immediately", "now", "asap", "critical", "emergency"}},
			Entry{ContextScope, []string{"all", "everything", "full", "complete", "entire", "whole"}},
			Entry{ContextPriority, []string{"high", "low", "medium", "normal", "important", "trivial"}},
			Entry{ContextTiming, []string{"later", "background", "scheduled", "delayed", "postponed"}},
			Entry{ContextCaution, []string{"safe", "safely", "careful", "carefully", "cautious", "gentle"}},
		),
		annotations: map[string]string{
			"@test":            TestUnit,
			"@unittest":        TestUnit,
			"@integrationtest": TestIntegration,
			"@apitest":         TestAPI,
			"@performancetest": TestPerformance,
			"@securitytest":    TestSecurity,
			"@contracttest":    TestContract,
			"@chaostest":       TestChaos,
			"@smoketest":       TestSmoke,
			"@regressiontest":  TestRegression,
			"@e2etest":         TestEndToEnd,
			"@loadtest":        TestLoad,
			"@stresstest":      TestStress,
			"@penetrationtest": TestPenetration,
		},
		deps: map[string][]string{
			ServiceUser:         {ServiceGateway},
			ServiceProduct:      {ServiceGateway},
			ServiceOrder:        {ServiceUser, ServiceProduct, ServiceGateway},
			ServiceNotification: {ServiceOrder, ServiceUser},
			ServiceGateway:      {},
		},
		serviceTips: map[string][]string{
			ServiceUser: {
				"User service is critical - ensure database connectivity",
				"Consider user session impact during testing",
			},
			ServiceOrder: {
				"Order service handles transactions - ensure data consistency",
				"Consider payment gateway dependencies",
			},
			ServiceProduct: {
				"Product service is read-heavy - consider cache impact",
			},
			ServiceNotification: {
				"Notification service is async - consider message queue health",
			},
			ServiceGateway: {
				"Gateway service is the entry point - test routing logic",
			},
		},
		testTips: map[string][]string{
			TestChaos: {
				"Chaos testing can cause service disruption - schedule during low traffic",
				"Ensure monitoring is enabled to track chaos effects",
			},
			TestPerformance: {
				"Performance testing requires dedicated resources",
				"Consider baseline performance metrics",
			},
			TestLoad: {
				"Load testing may impact other services - coordinate with teams",
			},
			TestIntegration: {
				"Integration tests require all dependent services to be healthy",
			},
		},
	}
}
