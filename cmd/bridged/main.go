// Package main starts a bridge host: a gin HTTP server that exposes
// the IPC Bridge Core over plain HTTP, for developers who want to
// exercise Router/SchemeHandlers/QueuedResponse/Preload without an
// actual WebView runtime embedding this module.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/ipcbridge/runtime/internal/authmw"
	"github.com/ipcbridge/runtime/internal/bridge"
	"github.com/ipcbridge/runtime/internal/config"
	"github.com/ipcbridge/runtime/internal/ipc"
	"github.com/ipcbridge/runtime/internal/logging"
	"github.com/ipcbridge/runtime/internal/preload"
	"github.com/ipcbridge/runtime/internal/queued"
	"github.com/ipcbridge/runtime/internal/router"
	"github.com/ipcbridge/runtime/internal/scheme"

	"github.com/ipcbridge/runtime/extensions/archive"
	"github.com/ipcbridge/runtime/extensions/audit"
	"github.com/ipcbridge/runtime/extensions/devrelay"
	"github.com/ipcbridge/runtime/extensions/passthrough"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	var configPath string
	var listenAddr string
	flag.StringVar(&configPath, "config", "bridge.yaml", "path to the bridge host's config file")
	flag.StringVar(&listenAddr, "listen", "", "override the configured listen address")
	flag.Parse()

	fmt.Printf("bridged %s (%s)\n", Version, Commit)

	cfg, err := config.Load(configPath, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bridged: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logging.Setup()
	if cfg.LogToFile {
		if err := logging.ToFile(cfg.LogFile, cfg.LogMaxSizeMB); err != nil {
			log.WithError(err).Warn("bridged: failed to configure file logging")
		}
	}

	b := bridge.New("bridged-default")
	defer b.Close()
	if cfg.Queued.SweepInterval > 0 {
		b.QueuedResponses().StartSweeper(cfg.Queued.SweepInterval)
	}
	b.SchemeHandlers().RegisterSchemeHandler("socket", scheme.NewQueuedFollowUpHandler(b.SchemeHandlers(), b.QueuedResponses()))

	relay := devrelay.NewRelay("/devrelay")
	defer relay.Close()
	if cfg.Extensions.DevRelayEnabled {
		b.Router().Listen("*", relay.Listener(b.ClientID()))
	}

	if cfg.Extensions.AuditEnabled {
		if dsn := os.Getenv("BRIDGE_AUDIT_DSN"); dsn != "" {
			sink, err := audit.Open(context.Background(), dsn, "")
			if err != nil {
				log.WithError(err).Warn("bridged: audit sink disabled")
			} else {
				defer sink.Close()
				b.Router().Listen("*", sink.Listener(b.ClientID()))
			}
		}
	}

	if cfg.Auth.Enabled {
		verifier := authmw.New([]byte(cfg.Auth.Secret))
		b.SchemeHandlers().SetGate(verifier.Gate())
	}

	if cfg.Extensions.ArchiveEnabled {
		if snapshots, err := archive.NewSnapshotStore("bridge-snapshots"); err != nil {
			log.WithError(err).Warn("bridged: preload snapshot store disabled")
		} else {
			b.Router().Listen("preload:compile", func(msg ipc.Message, _ *router.Router, reply func(ipc.Result)) {
				if commit, err := snapshots.Save(msg.Value); err != nil {
					log.WithError(err).Warn("bridged: preload snapshot failed")
				} else if commit != "" {
					log.WithField("commit", commit).Info("bridged: preload snapshot recorded")
				}
			})
		}
	}

	if cfg.Extensions.PassthroughEnabled {
		rt, err := passthrough.NewRoundTripper(os.Getenv("BRIDGE_PASSTHROUGH_PROXY"))
		if err != nil {
			log.WithError(err).Warn("bridged: passthrough handler disabled")
		} else {
			ph := passthrough.NewHandler(rt, b.SchemeHandlers())
			b.SchemeHandlers().RegisterSchemeHandler("passthrough", ph.Handle)
		}
	}

	watcher, err := config.NewWatcher(configPath, func(updated *config.Config) {
		log.Info("bridged: configuration reloaded")
		cfg = updated
	})
	if err != nil {
		log.WithError(err).Warn("bridged: config watcher disabled")
	} else {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := watcher.Start(ctx); err != nil {
			log.WithError(err).Warn("bridged: failed to start config watcher")
		}
		defer watcher.Stop()
	}

	engine := gin.New()
	engine.Use(logging.GinRecovery(), logging.GinRequestLogger())
	registerRoutes(engine, b, cfg, relay)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("bridged: listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("bridged: server error")
		}
	}()

	<-ctx.Done()
	log.Info("bridged: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("bridged: graceful shutdown failed")
	}
}

func registerRoutes(engine *gin.Engine, b *bridge.Bridge, cfg *config.Config, relay *devrelay.Relay) {
	engine.POST("/ipc/invoke", func(c *gin.Context) {
		uri := c.Query("uri")
		if uri == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing uri query parameter"})
			return
		}
		body, _ := c.GetRawData()
		if !b.Route(c.Request.Context(), uri, body) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no route for uri"})
			return
		}
		c.Status(http.StatusAccepted)
	})

	engine.GET("/preload.js", func(c *gin.Context) {
		p := preload.New(preload.Options{Features: preload.Features{
			UseGlobalCommonJS: cfg.Preload.UseGlobalCommonJS,
			UseGlobalNodeJS:   cfg.Preload.UseGlobalNodeJS,
			UseGlobalArgs:     cfg.Preload.UseGlobalArgs,
			UseHTMLMarkup:     cfg.Preload.UseHTMLMarkup,
			UseESM:            cfg.Preload.UseESM,
		}})
		script, err := p.Compile()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/javascript", []byte(script))
	})

	engine.POST("/queued", func(c *gin.Context) {
		body, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}
		ttl := cfg.Queued.DefaultTTL
		resp := queued.Response{TTL: ttl, Body: body}
		if encoding := c.Query("encoding"); encoding != "" {
			if err := resp.CompressBody(encoding); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		id := b.QueuedResponses().Put(resp)
		c.JSON(http.StatusCreated, gin.H{"id": id})
	})

	// GET /queued/:id is plain HTTP's window onto the "socket" follow-up
	// scheme: it builds a scheme.Request carrying the same id query the
	// JS shim would issue and drives it through SchemeHandlers, so this
	// path exercises the exact QueuedResponse retrieval/streaming logic
	// a WebView's follow-up request would.
	engine.GET("/queued/:id", func(c *gin.Context) {
		req := scheme.NewRequest(scheme.RequestOptions{
			Scheme: "socket",
			Query:  "id=" + c.Param("id"),
		})
		var resp *scheme.Response
		if !b.SchemeHandlers().HandleRequest(req, func(r *scheme.Response) { resp = r }) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no follow-up handler registered"})
			return
		}
		for _, entry := range resp.Headers.Entries() {
			c.Header(entry.Name, entry.Value)
		}
		contentType := resp.GetHeader("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(resp.StatusCode, contentType, resp.Data())
	})

	engine.GET(relay.Path(), gin.WrapH(relay.Handler()))
}
