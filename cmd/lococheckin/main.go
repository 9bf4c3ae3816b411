// Command lococheckin dials a Loco check-in server, performs a CHECKIN
// request, and then idles listening for broadcasts while serving health and
// metrics endpoints over HTTP.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lococlient/internal/chunkedstream"
	"lococlient/internal/circuit"
	"lococlient/internal/config"
	"lococlient/internal/facade/checkin"
	"lococlient/internal/frame"
	"lococlient/internal/httpserver"
	"lococlient/internal/logger"
	"lococlient/internal/metrics"
	"lococlient/internal/middleware"
	"lococlient/internal/pool"
	"lococlient/internal/retry"
	"lococlient/internal/session"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to JSON config file")
		dialAddr   = flag.String("dial", "", "override dial_addr from config")
		httpAddr   = flag.String("http-addr", "", "override http_addr from config")
		userID     = flag.Int64("user-id", 0, "user id to check in as")
		modelName  = flag.String("model", "lococlient", "device model name sent with CHECKIN")
		osVersion  = flag.String("os-version", "linux", "os version string sent with CHECKIN")
		mccmnc     = flag.String("mccmnc", "", "carrier MCC/MNC string sent with CHECKIN")
	)
	flag.Parse()

	log := logger.New()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatal("failed to load config", "path", *configPath, "err", err)
		}
		cfg = loaded
	}
	if *dialAddr != "" {
		cfg.DialAddr = *dialAddr
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var breaker *circuit.Breaker
	if cfg.CircuitBreaker.Enabled {
		breaker = circuit.NewNamed("loco-dial", cfg.CircuitBreaker.MaxFailures, time.Duration(cfg.CircuitBreaker.ResetTimeoutSec)*time.Second, cfg.CircuitBreaker.SuccessThresh)
	}

	conn, err := dial(ctx, cfg, log, breaker)
	if err != nil {
		log.Fatal("failed to dial loco endpoint", "addr", cfg.DialAddr, "err", err)
	}

	var rw io.ReadWriter = conn
	if cfg.ChunkWriteSize > 0 {
		rw = &chunkedReadWriter{r: conn, w: chunkedstream.New(conn, cfg.ChunkWriteSize)}
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSec, cfg.RateLimit.Burst)
		defer rateLimiter.Stop()
	}

	sess := session.New(rw, sessionOptions(cfg, rateLimiter)...)
	defer sess.Close()

	client := checkin.New(sess)
	checkinLog := log.WithMethod("CHECKIN").WithPeer(cfg.DialAddr)

	checkinCtx, cancel := cfg.DialTimeout.WithTimeout(ctx)
	resp, err := client.Checkin(checkinCtx, checkin.CheckinRequest{
		UserID:    *userID,
		ModelName: *modelName,
		OSVersion: *osVersion,
		MCCMNC:    *mccmnc,
	})
	cancel()
	if err != nil {
		checkinLog.Error("checkin request failed", "err", err)
	} else {
		checkinLog.Info("checkin succeeded", "status", resp.Status, "host", resp.Host, "port", resp.Port)
	}

	stats := &httpserver.SessionStats{
		DialAddr:        cfg.DialAddr,
		PendingRequests: sess.PendingCount,
		RateLimit:       rateLimiter,
		CircuitBreaker:  breaker,
	}

	var tlsConfig *tls.Config
	srv := httpserver.New(cfg.HTTPAddr, log, stats, tlsConfig)

	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error("http server stopped with error", "err", err)
		}
	}()

	go drainBroadcasts(ctx, sess, log)

	<-ctx.Done()
	log.Info("shutting down")
	if err := conn.Close(); err != nil {
		log.Warn("failed to close connection", "err", err)
	}
}

// dial opens the transport connection, guarded by the configured circuit
// breaker and retried with exponential backoff.
func dial(ctx context.Context, cfg config.Config, log *logger.Logger, breaker *circuit.Breaker) (net.Conn, error) {
	var conn net.Conn

	dialOnce := func() error {
		d := net.Dialer{Timeout: time.Duration(cfg.DialTimeout)}
		var err error
		if cfg.Security.TLSEnabled {
			tlsDialer := &tls.Dialer{NetDialer: &d}
			var c net.Conn
			c, err = tlsDialer.DialContext(ctx, "tcp", cfg.DialAddr)
			conn = c
		} else {
			conn, err = d.DialContext(ctx, "tcp", cfg.DialAddr)
		}
		return err
	}

	attempt := func() error {
		if breaker != nil {
			return breaker.Call(dialOnce)
		}
		return dialOnce()
	}

	onAttempt := func(n int, err error) {
		recordDialOutcome(err)
		if err != nil {
			log.WithMethod("DIAL").Warn("dial attempt failed", "attempt", n, "addr", cfg.DialAddr, "err", err)
		}
	}

	var err error
	if cfg.Retry.Enabled {
		retryCfg := retry.Config{
			MaxAttempts:  cfg.Retry.MaxAttempts,
			InitialDelay: time.Duration(cfg.Retry.InitialDelaySec) * time.Second,
			MaxDelay:     time.Duration(cfg.Retry.MaxDelaySec) * time.Second,
			Multiplier:   cfg.Retry.Multiplier,
		}
		err = retry.DoWithJitter(ctx, retryCfg, cfg.Retry.JitterFraction, attempt, onAttempt)
	} else {
		err = attempt()
		onAttempt(1, err)
	}

	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.DialAddr, err)
	}
	log.Info("connected to loco endpoint", "addr", cfg.DialAddr)
	return conn, nil
}

// sessionOptions builds the session options for the configured codec limits
// and outgoing-request rate limiter.
func sessionOptions(cfg config.Config, limiter *middleware.RateLimiter) []session.Option {
	frameOpts := []frame.Option{frame.WithMaxBodySize(uint32(cfg.MaxBodySize))}
	if cfg.ReadBuffer > 0 {
		frameOpts = append(frameOpts, frame.WithBufferPool(pool.New(cfg.ReadBuffer)))
	}
	opts := []session.Option{session.WithFrameOptions(frameOpts...)}
	if limiter != nil {
		opts = append(opts, session.WithRateLimiter(limiter))
	}
	return opts
}

func recordDialOutcome(err error) {
	if err != nil {
		metrics.DialAttempts.WithLabelValues("failure").Inc()
		return
	}
	metrics.DialAttempts.WithLabelValues("success").Inc()
}

// drainBroadcasts logs unsolicited commands until the session closes or ctx
// is cancelled, so the reader goroutine's broadcast queue never grows
// unbounded for lack of a consumer.
func drainBroadcasts(ctx context.Context, sess *session.Session, log *logger.Logger) {
	for {
		b, err := sess.NextBroadcast(ctx)
		if err != nil {
			return
		}
		log.WithRequestID(b.ID).WithMethod(b.Command.Method).Info("broadcast received")
	}
}

// chunkedReadWriter pairs a plain reader with a chunked writer over the same
// underlying connection.
type chunkedReadWriter struct {
	r io.Reader
	w io.Writer
}

func (c *chunkedReadWriter) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *chunkedReadWriter) Write(p []byte) (int, error) { return c.w.Write(p) }
