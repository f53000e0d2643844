package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/soraredata/auction-tracker/internal/testutil"
	"github.com/soraredata/auction-tracker/pkg/cache"
	"github.com/soraredata/auction-tracker/pkg/graphql"
)

func newTestClient(mock *testutil.MockSorare, c *cache.Manager) *Client {
	return New(Config{Endpoint: mock.URL(), Timeout: 5 * time.Second, Cache: c})
}

func TestExecute_DecodesResponse(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.SinglePageBody(testutil.Sale("2026-01-01T00:00:00Z", 1250))
	})

	c := newTestClient(mock, nil)
	resp, err := c.Execute(context.Background(), "single", graphql.Single("roman-celentano", 20, ""))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if resp.BudgetRejected() {
		t.Error("unexpected budget rejection")
	}
	page, err := graphql.ParseSingle(resp.Data)
	if err != nil {
		t.Fatalf("ParseSingle: %v", err)
	}
	if len(page.Sales) != 1 || page.Sales[0].AmountUSD != 12.50 {
		t.Errorf("sales = %+v, want one sale of 12.50", page.Sales)
	}
	if c.Requests() != 1 {
		t.Errorf("Requests() = %d, want 1", c.Requests())
	}
}

func TestExecute_BudgetRejectionIsNotAnError(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.ComplexityErrorBody()
	})

	c := newTestClient(mock, nil)
	resp, err := c.Execute(context.Background(), "batch", graphql.Batch([]string{"a-b"}, 20))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !resp.BudgetRejected() {
		t.Error("budget rejection not detected")
	}
}

func TestExecute_NonOKStatusIsError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "not found", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockSorare()
			defer mock.Close()
			mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
				return tt.status, "error"
			})

			c := newTestClient(mock, nil)
			_, err := c.Execute(context.Background(), "single", graphql.Single("x-y", 20, ""))
			if err == nil {
				t.Fatal("Execute succeeded, want error")
			}

			var statusErr *StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("error = %v, want *StatusError", err)
			}
			if statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
		})
	}
}

func TestExecute_UnreachableEndpointIsError(t *testing.T) {
	c := New(Config{Endpoint: "http://127.0.0.1:1", Timeout: time.Second})
	if _, err := c.Execute(context.Background(), "single", graphql.Single("x-y", 20, "")); err == nil {
		t.Fatal("Execute succeeded against unreachable endpoint, want error")
	}
}

func TestExecute_ServesFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := cache.NewManager(redisClient, time.Minute)

	mock := testutil.NewMockSorare()
	defer mock.Close()
	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.SinglePageBody(testutil.Sale("2026-01-01T00:00:00Z", 1000))
	})

	c := newTestClient(mock, manager)
	req := graphql.Single("roman-celentano", 20, "")

	if _, err := c.Execute(context.Background(), "single", req); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	resp, err := c.Execute(context.Background(), "single", req)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if mock.RequestCount() != 1 {
		t.Errorf("upstream requests = %d, want 1 (second must hit cache)", mock.RequestCount())
	}
	if c.Requests() != 1 {
		t.Errorf("Requests() = %d, want 1 (cache hits are not round-trips)", c.Requests())
	}
	page, err := graphql.ParseSingle(resp.Data)
	if err != nil {
		t.Fatalf("ParseSingle: %v", err)
	}
	if len(page.Sales) != 1 {
		t.Errorf("cached response sales = %d, want 1", len(page.Sales))
	}
}

func TestExecute_BudgetRejectionNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := cache.NewManager(redisClient, time.Minute)

	mock := testutil.NewMockSorare()
	defer mock.Close()
	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.ComplexityErrorBody()
	})

	c := newTestClient(mock, manager)
	req := graphql.Batch([]string{"a-b", "c-d"}, 20)

	for i := 0; i < 2; i++ {
		if _, err := c.Execute(context.Background(), "batch", req); err != nil {
			t.Fatalf("Execute %d: %v", i, err)
		}
	}

	// Both calls must reach the network: a cached rejection would starve the
	// fallback path of fresh answers.
	if mock.RequestCount() != 2 {
		t.Errorf("upstream requests = %d, want 2", mock.RequestCount())
	}
}
