package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"maidmarket/internal/favorite/client"
	"maidmarket/internal/favorite/optimistic"
)

// session is one signed-in customer: API client plus the optimistic
// favorites state built on top of it.
type session struct {
	api       *client.Client
	store     *optimistic.Store
	confirmed *optimistic.Confirmed
	projector *optimistic.Projector
	coord     *optimistic.Coordinator

	metricsAddr string
	metricsSrv  *http.Server
}

func newSession(ctx context.Context, v *viper.Viper) (*session, error) {
	s, err := loadSettings(v)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if s.Verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}

	api := client.New(s.Server, s.Token)
	store := optimistic.Default()
	confirmed := optimistic.NewConfirmed(api)
	if err := confirmed.Refresh(ctx); err != nil {
		return nil, err
	}

	sess := &session{
		api:       api,
		store:     store,
		confirmed: confirmed,
		projector: optimistic.NewProjector(store, confirmed),
	}

	opts := []optimistic.Option{
		optimistic.WithTimeout(s.Timeout),
		optimistic.WithLogger(log),
	}
	if s.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, optimistic.WithMetrics(optimistic.NewMetrics(reg)))
		if err := sess.serveMetrics(s.MetricsAddr, reg, log); err != nil {
			return nil, err
		}
	}
	sess.coord = optimistic.NewCoordinator(store, confirmed, api, opts...)
	return sess, nil
}

// serveMetrics exposes the toggle metrics on addr until Close.
func (s *session) serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.metricsAddr = ln.Addr().String()
	s.metricsSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := s.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return nil
}

func (s *session) Close() {
	if s.metricsSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.metricsSrv.Shutdown(ctx)
}

func heart(fav bool) string {
	if fav {
		return "♥"
	}
	return "·"
}
