// Package httpserver runs an http.Handler with graceful shutdown.
//
//	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log),
//		httpserver.WithStopHook(sink.Close),
//	)
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when the context is cancelled or Shutdown is called, after
// in-flight requests completed (bounded by ShutdownTimeout) and stop hooks
// ran.
package httpserver
