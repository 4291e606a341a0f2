// Package health provides liveness and readiness HTTP handlers.
//
// Readiness runs named checks concurrently under a shared timeout. Checks use
// the func(context.Context) error shape returned by db.Healthcheck,
// kvstore.Healthcheck and job.Healthcheck:
//
//	r.Get("/healthz", health.LivenessHandler())
//	r.Get("/readyz", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    kvstore.Healthcheck(client),
//	    "jobs":     job.Healthcheck(manager),
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" / "Service Unavailable") unless the client
// asks for JSON with Accept: application/json or ?format=json.
package health
