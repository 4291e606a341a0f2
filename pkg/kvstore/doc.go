// Package kvstore is the key-value store behind saved settings.
//
// Store is a minimal Get/Set/Delete contract over string keys and raw byte
// values. Two implementations are provided: Redis, backed by go-redis and
// namespaced with a key prefix, and Memory, a mutex-guarded map for tests and
// single-process deployments.
//
// Open dials Redis with pooling defaults and retries the initial ping with a
// linear backoff:
//
//	client, err := kvstore.Open(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//	    return err
//	}
//	store := kvstore.NewRedis(client, kvstore.WithPrefix("mailmerge"))
//
// Healthcheck and Shutdown adapt the client to readiness probes and the
// process shutdown sequence.
package kvstore
