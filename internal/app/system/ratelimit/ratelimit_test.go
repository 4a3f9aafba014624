package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestLimiter_AllowAndWindow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		if got, _ := l.Allow(ctx, "1.2.3.4"); got != want {
			t.Errorf("call %d: got %v, want %v", i+1, got, want)
		}
	}
	if got, _ := l.Allow(ctx, "5.6.7.8"); !got {
		t.Error("other key should have its own window")
	}
	if rem := l.Remaining("1.2.3.4"); rem != 0 {
		t.Errorf("Remaining: got %d, want 0", rem)
	}

	now = now.Add(time.Minute + time.Second)
	if got, _ := l.Allow(ctx, "1.2.3.4"); !got {
		t.Error("expected a fresh window after expiry")
	}

	l.Reset("1.2.3.4")
	if rem := l.Remaining("1.2.3.4"); rem != 2 {
		t.Errorf("Remaining after reset: got %d, want 2", rem)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.1, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.1"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:1234", "198.51.100.7"},
		{"remote", "", "", "192.0.2.5:5555", "192.0.2.5"},
		{"remote without port", "", "", "192.0.2.5", "192.0.2.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.xri != "" {
				r.Header.Set("X-Real-IP", tc.xri)
			}
			if got := ClientIP(r); got != tc.want {
				t.Errorf("ClientIP: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMiddleware_Returns429(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	limited := 0
	h := Middleware(l, zap.NewNop(), func(*http.Request) { limited++ })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i, want := range []int{http.StatusCreated, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/catalog/requests", nil))
		if rec.Code != want {
			t.Errorf("call %d: got %d, want %d", i+1, rec.Code, want)
		}
	}
	if limited != 1 {
		t.Errorf("onLimited calls: got %d, want 1", limited)
	}
}

type failing struct{}

func (failing) Allow(context.Context, string) (bool, error) { return false, context.DeadlineExceeded }

func TestMiddleware_LimiterFailureLetsThrough(t *testing.T) {
	h := Middleware(failing{}, zap.NewNop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	l := NewRedis(client, "coursehub:test:"+uuid.NewString()+":", 2, time.Minute)
	for i, want := range []bool{true, true, false} {
		got, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if got != want {
			t.Errorf("call %d: got %v, want %v", i+1, got, want)
		}
	}
	if err := l.Reset(ctx, "1.2.3.4"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got, _ := l.Allow(ctx, "1.2.3.4"); !got {
		t.Error("expected allow after reset")
	}
}

func TestRedisLimiter_CounterWithoutExpiryHeals(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	prefix := "coursehub:test:" + uuid.NewString() + ":"
	l := NewRedis(client, prefix, 2, time.Minute)
	k := prefix + "5.6.7.8"
	// An over-limit counter whose EXPIRE never landed.
	if err := client.Set(ctx, k, 9, 0).Err(); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	defer client.Del(ctx, k)

	ok, err := l.Allow(ctx, "5.6.7.8")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("over-limit counter must still deny")
	}
	ttl, err := client.TTL(ctx, k).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl: got %v, want within (0, 1m]", ttl)
	}
}

func TestRedisLimiter_ExpiryKeptWithinWindow(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	prefix := "coursehub:test:" + uuid.NewString() + ":"
	l := NewRedis(client, prefix, 5, time.Minute)
	k := prefix + "9.9.9.9"
	defer client.Del(ctx, k)

	if _, err := l.Allow(ctx, "9.9.9.9"); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if err := client.Expire(ctx, k, 10*time.Second).Err(); err != nil {
		t.Fatalf("shorten ttl: %v", err)
	}
	if _, err := l.Allow(ctx, "9.9.9.9"); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ttl := client.TTL(ctx, k).Val(); ttl > 10*time.Second {
		t.Errorf("second hit must not extend the window, ttl %v", ttl)
	}
}
