package rpc_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/malbeclabs/crowdfunding/pkg/rpc"
	"github.com/malbeclabs/crowdfunding/smartcontract/sdk/go/crowdfunding"
	"github.com/stretchr/testify/require"
)

var _ crowdfunding.RPCClient = (*solanarpc.Client)(nil)

type rpcRequest struct {
	ID     any    `json:"id"`
	Method string `json:"method"`
}

func writeResult(t *testing.T, w http.ResponseWriter, id any, result any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}))
}

func TestPkg_RPC_NewWithRetries_RetriesOnEOFThenSucceeds(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "getBalance", req.Method)

		writeResult(t, w, req.ID, map[string]any{
			"context": map[string]any{"slot": 1},
			"value":   9_688_320,
		})
	}))
	defer srv.Close()

	client := rpc.NewWithRetries(srv.URL, &rpc.RetryOptions{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	})

	res, err := client.GetBalance(t.Context(), solana.NewWallet().PublicKey(), solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	require.Equal(t, uint64(9_688_320), res.Value)
	require.GreaterOrEqual(t, hits.Load(), int32(2))
}

func TestPkg_RPC_NewWithHeadersAndRetries_SendsHeaders(t *testing.T) {
	t.Parallel()

	wantHeaders := map[string]string{"X-Api-Key": "abc123"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range wantHeaders {
			require.Equal(t, v, r.Header.Get(k))
		}
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req rpcRequest
		require.NoError(t, json.Unmarshal(body, &req))
		writeResult(t, w, req.ID, 890_880)
	}))
	defer srv.Close()

	client := rpc.NewWithHeadersAndRetries(srv.URL, wantHeaders, &rpc.RetryOptions{MaxAttempts: 1})
	got, err := client.GetMinimumBalanceForRentExemption(t.Context(), 0, solanarpc.CommitmentFinalized)
	require.NoError(t, err)
	require.Equal(t, uint64(890_880), got)
}
