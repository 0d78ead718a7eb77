package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newRPCServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		calls.Add(1)
		result := `null`
		if req.Method == "eth_chainId" {
			result = `"0x1"`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	}))
}

func TestClientChainID(t *testing.T) {
	var calls atomic.Int32
	srv := newRPCServer(t, &calls)
	defer srv.Close()

	client, err := NewClient(context.Background(), srv.URL, Options{RateLimit: 100})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	chainID, err := client.GetChainID(context.Background())
	if err != nil {
		t.Fatalf("chain id: %v", err)
	}
	if chainID.Uint64() != 1 {
		t.Fatalf("unexpected chain id: %s", chainID)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one rpc call, got %d", calls.Load())
	}
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	var calls atomic.Int32
	srv := newRPCServer(t, &calls)
	defer srv.Close()

	client, err := NewClient(context.Background(), srv.URL, Options{RateLimit: 1})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.GetChainID(ctx); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
	if calls.Load() != 0 {
		t.Fatalf("cancelled call reached the node")
	}
}
