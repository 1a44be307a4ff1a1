package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/skincare/internal/client/client"
	"github.com/dmitrijs2005/skincare/internal/client/config"
	"github.com/dmitrijs2005/skincare/internal/client/identity"
	"github.com/dmitrijs2005/skincare/internal/client/idp"
	"github.com/dmitrijs2005/skincare/internal/client/imagehost"
	"github.com/dmitrijs2005/skincare/internal/client/metrics"
	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
	"github.com/dmitrijs2005/skincare/internal/client/services"
	"github.com/dmitrijs2005/skincare/internal/cryptox"
	"github.com/dmitrijs2005/skincare/internal/logging"
	"github.com/dmitrijs2005/skincare/internal/validate"
)

var errNoVerifier = errors.New("either a token secret or an OIDC issuer must be configured")

// NewApp builds the whole client from c: local store, backend client,
// identity provider and cache, session registry, image host and, when
// MetricsAddr is set, the metrics listener.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := client.OpenStore(ctx, c)
	if err != nil {
		log.Error(ctx, "error initializing local store", "err", err)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	var provider *idp.Provider
	tokens := client.TokenFunc(func() string {
		if provider == nil {
			return ""
		}
		return provider.Token()
	})

	backend, err := client.NewHTTPClient(c.BackendURL, tokens,
		client.WithHTTPClient(&http.Client{Transport: collector.InstrumentTransport(nil)}),
		client.WithTimeout(c.HTTPTimeout),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	verifier, err := newVerifier(ctx, c)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	host, err := newImageHost(ctx, c)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	v := validate.New()
	bridge := services.NewBridge(backend, v, log.With("component", "bridge"))
	registry := services.NewRegistry(backend, v, log.With("component", "sessions"))

	var providerOpts []idp.Option
	if c.StoreSecret != "" {
		providerOpts = append(providerOpts, idp.WithCodec(cryptox.NewSealer(c.StoreSecret)))
	}
	provider = idp.NewProvider(verifier, bridge, store.Metadata, providerOpts...)
	cache := identity.NewCache(provider, store.Metadata,
		identity.WithTTL(c.IdentityTTL),
		identity.WithLogger(log.With("component", "identity")),
		identity.WithObserver(collector),
	)

	out := os.Stdout
	pipelineLog := log.With("component", "pipeline")
	newPipeline := func(sessionID, uid string) sessionPipeline {
		return pipeline.New(sessionID, backend, host, cache,
			pipeline.WithHandoffUID(uid),
			pipeline.WithObserver(collector),
			pipeline.WithLogger(pipelineLog.With("session_id", sessionID)),
			pipeline.WithNotifier(pipeline.NotifierFunc(func(msg string) { fmt.Fprintln(out, msg) })),
		)
	}

	stopMetrics := func() {}
	if c.MetricsAddr != "" {
		mctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := metrics.Serve(mctx, c.MetricsAddr, metrics.Router(reg), nil); err != nil {
				log.Error(mctx, "metrics listener stopped", "addr", c.MetricsAddr, "err", err)
			}
		}()
		stopMetrics = func() {
			cancel()
			<-done
		}
	}

	return &App{
		signer:      provider,
		identity:    cache,
		bridge:      bridge,
		registry:    registry,
		newPipeline: newPipeline,
		log:         log,
		closeFn: func() error {
			stopMetrics()
			return store.Close()
		},
		in:  bufio.NewScanner(os.Stdin),
		out: out,
	}, nil
}

func newVerifier(ctx context.Context, c *config.Config) (idp.Verifier, error) {
	switch {
	case c.OIDCIssuer != "":
		v, err := idp.NewOIDCVerifier(ctx, c.OIDCIssuer, c.OIDCClientID)
		if err != nil {
			return nil, err
		}
		return v, nil
	case c.TokenSecret != "":
		return idp.NewHMACVerifier([]byte(c.TokenSecret)), nil
	default:
		return nil, errNoVerifier
	}
}

func newImageHost(ctx context.Context, c *config.Config) (imagehost.Uploader, error) {
	switch c.ImageHost {
	case config.ImageHostImgBB, "":
		return imagehost.NewImgBB(c.ImgBBURL, c.ImgBBAPIKey, c.UploadsPerMinute, nil), nil
	case config.ImageHostS3:
		h, err := imagehost.NewS3(ctx, imagehost.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Expiry:    c.S3PresignExpiry,
		}, nil)
		if err != nil {
			return nil, err
		}
		return h, nil
	default:
		return nil, fmt.Errorf("unknown image host %q", c.ImageHost)
	}
}
