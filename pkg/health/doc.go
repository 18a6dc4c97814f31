// Package health provides liveness and readiness probe handlers.
//
// Readiness runs named checks concurrently under a shared deadline and
// answers 503 when any of them fails:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//		"redis": store.Ping,
//	}, health.WithTimeout(2*time.Second)))
//
// Responses are JSON:
//
//	{"status":"down","checks":{"redis":{"status":"down","error":"..."}}}
package health
