package daemon

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientReadsService(t *testing.T) {
	s, _ := newTestService(t, nil, "2024-02-15")
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	c := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	ctx := context.Background()

	st, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Summary.Transactions != 2 || st.Summary.Pending != 1 {
		t.Fatalf("status summary = %+v", st.Summary)
	}

	budgets, err := c.Budgets(ctx, "2024-02", "2024-02")
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Limit != "500" {
		t.Fatalf("budgets = %+v", budgets)
	}

	pending, err := c.Recurring(ctx)
	if err != nil {
		t.Fatalf("Recurring: %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "Rent" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Fatalf("err = %v, want HTTP 500", err)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(addr).Status(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("err = %v, want ErrUnreachable", err)
	}
}
