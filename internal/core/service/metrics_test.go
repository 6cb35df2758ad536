package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rolegate/rolegate/internal/core/domain"
	"github.com/rolegate/rolegate/internal/metrics"
)

func TestLoginService_CountsOutcomes(t *testing.T) {
	f := newLoginFixture(&stubHasher{})
	ctx := context.Background()

	success := metrics.LoginAttemptsTotal.WithLabelValues("success")
	badPassword := metrics.LoginAttemptsTotal.WithLabelValues("bad-password")
	noSuchUser := metrics.LoginAttemptsTotal.WithLabelValues("no-such-user")
	s0, b0, n0 := testutil.ToFloat64(success), testutil.ToFloat64(badPassword), testutil.ToFloat64(noSuchUser)

	if _, err := f.registrar.Register(ctx, domain.Registration{Name: "Ann", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _ = f.login.Login(ctx, "a@x.com", "secret1", "")
	_, _ = f.login.Login(ctx, "a@x.com", "nope12", "")
	_, _ = f.login.Login(ctx, "z@x.com", "secret1", "")

	if testutil.ToFloat64(success)-s0 != 1 || testutil.ToFloat64(badPassword)-b0 != 1 || testutil.ToFloat64(noSuchUser)-n0 != 1 {
		t.Fatalf("unexpected login counters")
	}
}
