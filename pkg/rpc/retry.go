package rpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

const (
	defaultMaxAttempts = 4
	defaultBaseBackoff = 500 * time.Millisecond
	defaultMaxBackoff  = 5 * time.Second
)

// Solana JSON-RPC server error codes that describe the node rather than the request.
const (
	codeBlockNotAvailable        = -32004
	codeNodeUnhealthy            = -32005
	codeBlockStatusNotAvailable  = -32014
	codeMinContextSlotNotReached = -32016
)

var (
	transientErrnos = []error{
		io.EOF,
		io.ErrUnexpectedEOF,
		syscall.ECONNRESET,
		syscall.ECONNREFUSED,
		syscall.ECONNABORTED,
		syscall.EPIPE,
		syscall.ETIMEDOUT,
	}
	transientMessages = []string{
		"connection reset by peer",
		"broken pipe",
		"use of closed network connection",
	}
	transientStatusCodes = map[int]bool{
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
	transientRPCCodes = map[int]bool{
		codeBlockNotAvailable:        true,
		codeNodeUnhealthy:            true,
		codeBlockStatusNotAvailable:  true,
		codeMinContextSlotNotReached: true,
	}
)

type RetryOptions struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// Logger, when set, gets a debug line for every retried call.
	Logger *slog.Logger
}

func (o *RetryOptions) withDefaults() RetryOptions {
	opt := RetryOptions{}
	if o != nil {
		opt = *o
	}
	if opt.MaxAttempts <= 0 {
		opt.MaxAttempts = defaultMaxAttempts
	}
	if opt.BaseBackoff <= 0 {
		opt.BaseBackoff = defaultBaseBackoff
	}
	if opt.MaxBackoff <= 0 {
		opt.MaxBackoff = defaultMaxBackoff
	}
	return opt
}

// WithRetry wraps a JSON-RPC client so that failures of the transport or of the node are
// retried with exponential backoff. Errors about the request itself, including a transaction
// rejected in preflight simulation, are returned on the first attempt.
func WithRetry(inner solanarpc.JSONRPCClient, opt *RetryOptions) solanarpc.JSONRPCClient {
	return &retryingJSONRPCClient{inner: inner, opt: opt.withDefaults()}
}

type retryingJSONRPCClient struct {
	inner solanarpc.JSONRPCClient
	opt   RetryOptions
}

func (c *retryingJSONRPCClient) CallForInto(ctx context.Context, out any, method string, params []any) error {
	_, err := retry(ctx, c.opt, method, func() (struct{}, error) {
		return struct{}{}, c.inner.CallForInto(ctx, out, method, params)
	})
	return err
}

func (c *retryingJSONRPCClient) CallWithCallback(ctx context.Context, method string, params []any, callback func(*http.Request, *http.Response) error) error {
	_, err := retry(ctx, c.opt, method, func() (struct{}, error) {
		return struct{}{}, c.inner.CallWithCallback(ctx, method, params, callback)
	})
	return err
}

func (c *retryingJSONRPCClient) CallBatch(ctx context.Context, requests jsonrpc.RPCRequests) (jsonrpc.RPCResponses, error) {
	return retry(ctx, c.opt, "batch", func() (jsonrpc.RPCResponses, error) {
		return c.inner.CallBatch(ctx, requests)
	})
}

func retry[T any](ctx context.Context, opt RetryOptions, method string, call func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = opt.BaseBackoff
	bo.MaxInterval = opt.MaxBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(opt.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
	}
	if opt.Logger != nil {
		retryOpts = append(retryOpts, backoff.WithNotify(func(err error, wait time.Duration) {
			opt.Logger.Debug("Retrying rpc call", "method", method, "error", err, "backoff", wait)
		}))
	}

	return backoff.Retry(ctx, func() (T, error) {
		res, err := call()
		if err != nil && !isRetryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, retryOpts...)
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// A JSON-RPC error is an answer from the node, so its code decides. -32002 is a failed
	// preflight simulation and resending gives the same answer.
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return transientRPCCodes[rpcErr.Code]
	}

	var status interface{ StatusCode() int }
	if errors.As(err, &status) {
		return transientStatusCodes[status.StatusCode()]
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, target := range transientErrnos {
		if errors.Is(err, target) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
