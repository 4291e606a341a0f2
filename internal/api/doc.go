// Package api exposes the mail-merge Service over HTTP.
//
// Routes:
//
//	POST   /send                   run a merge now
//	POST   /send/test              send the body to the test recipient
//	GET    /schedule               pending scheduled run
//	POST   /schedule               schedule a run {"at": RFC 3339, "config": {...}}
//	DELETE /schedule               cancel the scheduled run
//	GET    /config                 last saved configuration
//	PUT    /config                 save the configuration
//	GET    /templates              saved templates
//	PUT    /templates/{name}       save a template {"body": "..."}
//	DELETE /templates/{name}       delete a template
//	GET    /sources                dataset names
//	GET    /sources/{name}/headers header row of a dataset
//	GET    /runs/{id}              logged outcomes of a run
//	GET    /healthz, /readyz       probes
//
// Every Service call answers with its Result as JSON: 200 on success and
// 422 on an error result. Malformed requests get 400.
package api
