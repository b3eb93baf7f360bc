// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/guard"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/keystore"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/metrics"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/internal/policy"
	"github.com/H0llyW00dzZ/tls-cert-trust-guard/src/logger"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Config        string        `validate:"required,file"`
	Cert          string        `validate:"required,file"`
	Key           string        `validate:"required,file"`
	Listen        string        `validate:"required,hostname_port"`
	ID            string        `validate:"required"`
	MetricsListen string        `validate:"omitempty,hostname_port"`
	LoadTimeout   time.Duration `validate:"gt=0"`
	ShutdownGrace time.Duration `validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the options, naming the offending flags.
func (o *ServeOptions) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("cli: invalid serve option %s: failed %q check (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return errors.Join(errs...)
}

func newServeCommand(log logger.Logger) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve HTTPS guarded by the trust policy of one listener identifier",
		Long: `Serve HTTPS on --listen. Each request is admitted or rejected by the
policy that --id resolves to in --config; accepted requests are answered
with the subject of the client certificate. Guard metrics are exposed on
--metrics-listen at /metrics when set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return Serve(cmd.Context(), opts, logger.NewJSONLogger(cmd.ErrOrStderr(), "serve", false))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Config, "config", "c", "", "policy document")
	flags.StringVar(&opts.Cert, "cert", "", "server certificate (PEM)")
	flags.StringVar(&opts.Key, "key", "", "server private key (PEM)")
	flags.StringVarP(&opts.Listen, "listen", "l", "127.0.0.1:8443", "HTTPS listen address")
	flags.StringVar(&opts.ID, "id", "", "listener identifier matched against policy patterns")
	flags.StringVar(&opts.MetricsListen, "metrics-listen", "", "Prometheus metrics listen address")
	flags.DurationVar(&opts.LoadTimeout, "load-timeout", guard.DefaultLoadTimeout, "trust material load timeout")
	flags.DurationVar(&opts.ShutdownGrace, "shutdown-grace", 5*time.Second, "graceful shutdown timeout")

	return cmd
}

// Serve runs the guarded HTTPS endpoint until ctx is cancelled.
func Serve(ctx context.Context, opts *ServeOptions, log logger.Logger) error {
	log = logger.OrNop(log)

	cert, err := tls.LoadX509KeyPair(opts.Cert, opts.Key)
	if err != nil {
		return fmt.Errorf("cli: loading server key pair: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	g := guard.New(
		policy.NewResolver(policy.FileSource{Path: opts.Config}, policy.WithLogger(log)),
		keystore.NewFileLoader(),
		guard.WithLoadTimeout(opts.LoadTimeout),
		guard.WithLogger(log),
		guard.WithRecorder(metrics.NewRecorder(reg)),
	)

	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return err
	}

	servers := []*http.Server{{
		Handler: g.HTTPMiddleware(opts.ID, echoSubject()),
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
			// the guard decides; clients of disabled identifiers may omit a certificate
			ClientAuth: tls.RequestClientCert,
			MinVersion: tls.VersionTLS12,
		},
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}}

	errc := make(chan error, 2)
	go func() { errc <- servers[0].ServeTLS(ln, "", "") }()
	log.Printf("Serving %s for identifier %q", ln.Addr(), opts.ID)

	if opts.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv := &http.Server{Addr: opts.MetricsListen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		servers = append(servers, metricsSrv)
		go func() { errc <- metricsSrv.ListenAndServe() }()
		log.Printf("Serving metrics on %s", opts.MetricsListen)
	}

	select {
	case err := <-errc:
		shutdown(servers, opts.ShutdownGrace)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("Shutting down")
		return shutdown(servers, opts.ShutdownGrace)
	}
}

func shutdown(servers []*http.Server, grace time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := "anonymous"
		if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
			subject = r.TLS.PeerCertificates[0].Subject.String()
		}
		_, _ = io.WriteString(w, subject+"\n")
	})
}
