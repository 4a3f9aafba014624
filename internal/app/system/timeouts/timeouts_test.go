package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", got.Short)
	}
	if got.Medium != DefaultMedium {
		t.Errorf("Medium: got %v, want default %v", got.Medium, DefaultMedium)
	}
}

func TestConfigureFromEnv(t *testing.T) {
	t.Cleanup(Reset)
	t.Setenv(EnvPrefix+"LONG", "45s")
	t.Setenv(EnvPrefix+"BATCH", "nonsense")
	t.Setenv(EnvPrefix+"PING", "-1s")

	n, invalid := ConfigureFromEnv()
	if n != 1 {
		t.Errorf("applied: got %d, want 1", n)
	}
	if len(invalid) != 2 || invalid[0] != EnvPrefix+"PING" || invalid[1] != EnvPrefix+"BATCH" {
		t.Errorf("invalid: got %v", invalid)
	}
	if Long() != 45*time.Second {
		t.Errorf("Long: got %v, want 45s", Long())
	}
	if Batch() != DefaultBatch || Ping() != DefaultPing {
		t.Errorf("invalid values must keep defaults, got batch=%v ping=%v", Batch(), Ping())
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("err: got %v, want deadline exceeded", ctx.Err())
	}
}
