// Package mailmerge is the caller-facing surface of the mail-merge engine.
//
// A Service ties together a dataset opener, the merge engine, the settings
// store and the one-shot scheduler. Every operation returns a Result carrying
// a success or error status and a human-readable message, so a settings UI or
// an HTTP handler can show it directly:
//
//	svc := mailmerge.New(engine, mailer, sheet.NewFSOpener(os.DirFS("data")), settings.New(store),
//	    mailmerge.WithRegistry(schedule.NewJobRegistry(enqueuer)),
//	    mailmerge.WithTestRecipient("ops@example.com"),
//	    mailmerge.WithLogger(log),
//	)
//
//	res := svc.SendNow(ctx, cfg)
//	if !res.OK() {
//	    log.Error(res.Message)
//	}
//
// Service methods never panic. A panic in a collaborator is recovered,
// written to the diagnostic log and returned as an error Result.
//
// Service also implements schedule.Runner: when a scheduled invocation comes
// due, the scheduler calls RunMerge with the stored configuration.
package mailmerge
