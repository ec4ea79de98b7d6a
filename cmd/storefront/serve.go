package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/auth"
	"go.storefront.dev/core/cart"
	"go.storefront.dev/core/catalog"
	"go.storefront.dev/core/http_gateway"
	mbp "go.storefront.dev/core/mainboilerplate"
	"go.storefront.dev/core/task"
	"go.storefront.dev/core/web"
)

type cmdServe struct{}

func (cmdServe) Execute([]string) error {
	mbp.InitLog(Config.Log, log.Fields{
		"instance": Config.Service.InstanceID(),
		"env":      Config.App.Env,
	})

	var srv = Config.Service.MustServer()
	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics, srv.HTTPMux)()

	log.WithField("endpoint", srv.Endpoint()).Info("starting storefront")

	var sessions, err = Config.Session.BuildSessions()
	mbp.Must(err, "invalid session configuration")
	maxBody, err := Config.HTTP.MaxBodyBytes()
	mbp.Must(err, "invalid HTTP configuration")

	var tasks = task.NewGroup(context.Background())
	var db = Config.Database.MustOpen(tasks.Context())

	var catalogSvc = catalog.NewService(db, Config.Cache.BuildItemCache())
	var cartSvc = cart.NewService(db, catalogSvc)
	var authSvc = auth.NewService(db, sessions)

	var webHandler http.Handler
	if Config.HTTP.WebDir != "" {
		var h, err = web.NewOsHandler(Config.HTTP.WebDir)
		mbp.Must(err, "failed to open web bundle", "dir", Config.HTTP.WebDir)
		webHandler = h
	}

	srv.HTTPMux.Handle("/", http_gateway.NewGateway(http_gateway.Config{
		CORSOrigins:  Config.HTTP.Origins(),
		MaxBodyBytes: maxBody,
		Gzip:         !Config.HTTP.NoGzip,
		Production:   Config.App.IsProduction(),
		InstanceID:   Config.Service.InstanceID(),
	}, authSvc, catalogSvc, cartSvc, webHandler))

	srv.QueueTasks(tasks)

	var signalCh = make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)

	tasks.Queue("watch signals", func(ctx context.Context) error {
		select {
		case sig := <-signalCh:
			log.WithField("signal", sig).Info("caught signal")
			tasks.Cancel()
		case <-ctx.Done():
		}
		return nil
	})
	tasks.GoRun()

	// Block until all tasks complete. Assert none returned an error.
	mbp.Must(tasks.Wait(), "storefront task failed")
	mbp.Must(db.Close(), "failed to close database")

	log.Info("goodbye")
	return nil
}
