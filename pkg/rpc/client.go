package rpc

import (
	"net"
	"net/http"
	"time"

	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/klauspost/compress/gzhttp"
)

const (
	defaultMaxIdleConnsPerHost = 9
	defaultTimeout             = 5 * time.Minute
	defaultKeepAlive           = 180 * time.Second
)

// NewWithRetries creates a Solana JSON-RPC client with retrying request behavior. The
// returned client satisfies the crowdfunding SDK's RPCClient.
func NewWithRetries(rpcEndpoint string, retryOpt *RetryOptions) *solanarpc.Client {
	return NewWithHeadersAndRetries(rpcEndpoint, nil, retryOpt)
}

// NewWithHeadersAndRetries is NewWithRetries with custom headers on every request, for
// providers that authenticate with an API key header.
func NewWithHeadersAndRetries(rpcEndpoint string, headers map[string]string, retryOpt *RetryOptions) *solanarpc.Client {
	opts := &jsonrpc.RPCClientOpts{
		HTTPClient:    newHTTP(),
		CustomHeaders: headers,
	}
	inner := jsonrpc.NewClientWithOpts(rpcEndpoint, opts)
	return solanarpc.NewWithCustomRPCClient(WithRetry(inner, retryOpt))
}

// newHTTP returns an HTTP client with a gzip-aware transport.
// Client is safe for concurrent use by multiple goroutines.
func newHTTP() *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: gzhttp.Transport(newHTTPTransport()),
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		IdleConnTimeout:     defaultTimeout,
		MaxConnsPerHost:     defaultMaxIdleConnsPerHost,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		Proxy:               http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   defaultTimeout,
			KeepAlive: defaultKeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}
