package kube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/bkpaas/workloads/domain/model"
)

// Options tunes client construction. All fields are optional.
type Options struct {
	// UserAgent adds a custom user agent to the REST config.
	UserAgent string
	// QPS sets the allowed queries per second on the REST client.
	QPS float32
	// Burst sets the client-side rate limiter burst.
	Burst int
	// ConnectTimeout bounds dialing one endpoint.
	ConnectTimeout time.Duration
	// RequestTimeout bounds one request including reading the response.
	RequestTimeout time.Duration
}

func (o *Options) applyDefaults() {
	if o.QPS <= 0 {
		o.QPS = 20
	}
	if o.Burst <= 0 {
		o.Burst = 50
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
}

// Client talks to one cluster through a pool of API server endpoints.
// Requests elect an endpoint, demote it on transport failure and retry the
// next until the pool is exhausted.
type Client struct {
	ClusterName string

	pool      *EndpointPool
	endpoints []*endpointClient
}

// endpointClient holds the per-endpoint typed and dynamic clients. TLS
// material is shared across endpoints of one cluster.
type endpointClient struct {
	host      string
	clientset kubernetes.Interface
	dynamic   dynamic.Interface
	config    *rest.Config
}

// NewClient builds a pooled client from a cluster record.
func NewClient(cluster *model.Cluster, opts *Options) (*Client, error) {
	if err := cluster.Validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	opts.applyDefaults()

	endpoints := make([]*endpointClient, 0, len(cluster.APIServers))
	for _, server := range cluster.APIServers {
		cfg, err := restConfigFor(cluster, server, opts)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", server.Host, err)
		}
		cs, err := kubernetes.NewForConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: build clientset: %w", server.Host, err)
		}
		dyn, err := dynamic.NewForConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: build dynamic client: %w", server.Host, err)
		}
		endpoints = append(endpoints, &endpointClient{host: server.Host, clientset: cs, dynamic: dyn, config: cfg})
	}
	return &Client{
		ClusterName: cluster.Name,
		pool:        NewEndpointPool(len(endpoints)),
		endpoints:   endpoints,
	}, nil
}

// restConfigFor builds the rest config of one endpoint. When the endpoint
// declares an overridden hostname, the config advertises that hostname and
// a custom dialer rewrites the connect address back to the real target.
func restConfigFor(cluster *model.Cluster, server model.APIServer, opts *Options) (*rest.Config, error) {
	host := server.Host
	var dial func(ctx context.Context, network, addr string) (net.Conn, error)
	if server.OverriddenHostname != "" {
		u, err := url.Parse(server.Host)
		if err != nil {
			return nil, fmt.Errorf("parse api server host: %w", err)
		}
		_, realAddr, err := splitServerURL(server.Host)
		if err != nil {
			return nil, fmt.Errorf("parse api server host: %w", err)
		}
		port := u.Port()
		overridden := server.OverriddenHostname
		if port != "" {
			overridden = net.JoinHostPort(server.OverriddenHostname, port)
		}
		host = u.Scheme + "://" + overridden
		d := &overrideDialer{
			fromHost: server.OverriddenHostname,
			toAddr:   realAddr,
			dialer:   &net.Dialer{Timeout: opts.ConnectTimeout},
		}
		dial = d.DialContext
	} else {
		d := &net.Dialer{Timeout: opts.ConnectTimeout}
		dial = d.DialContext
	}

	cfg := &rest.Config{
		Host:    host,
		QPS:     opts.QPS,
		Burst:   opts.Burst,
		Dial:    dial,
		Timeout: opts.RequestTimeout,
	}
	if opts.UserAgent != "" {
		cfg.UserAgent = opts.UserAgent
	}
	if cluster.Token != "" {
		cfg.BearerToken = cluster.Token
	}
	cfg.TLSClientConfig = rest.TLSClientConfig{
		CAData:   []byte(cluster.CAData),
		CertData: []byte(cluster.CertData),
		KeyData:  []byte(cluster.KeyData),
	}
	if cluster.CAData == "" {
		cfg.TLSClientConfig.Insecure = true
	}
	return cfg, nil
}

// each runs fn against elected endpoints until it returns a non-transport
// result or the pool is exhausted, then surfaces model.ErrClusterUnreachable.
func (c *Client) each(ctx context.Context, fn func(ep *endpointClient) error) error {
	var lastErr error
	for attempt := 0; attempt < len(c.endpoints); attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		idx := c.pool.Elect()
		err := fn(c.endpoints[idx])
		if err == nil {
			c.pool.Succeed(idx)
			return nil
		}
		if !isTransportError(err) {
			c.pool.Succeed(idx)
			return err
		}
		c.pool.Fail(idx)
		lastErr = err
	}
	return fmt.Errorf("%w: cluster %s: %v", model.ErrClusterUnreachable, c.ClusterName, lastErr)
}

// isTransportError reports whether an error came from the transport rather
// than the API server, making a retry on another endpoint worthwhile.
func isTransportError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
