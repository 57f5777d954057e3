package puppetdep

import (
	"log/slog"
	"testing"
)

func TestDefaultOptionsValidate(t *testing.T) {
	cfg, err := newResolverConfig()
	if err != nil {
		t.Fatalf("newResolverConfig(): unexpected error: %v", err)
	}
	if cfg.forgeEndpoint == "" {
		t.Error("default forge endpoint should not be empty")
	}
}

func TestWithForgeEndpointEmptyFailsValidation(t *testing.T) {
	_, err := newResolverConfig(WithForgeEndpoint(""))
	if err != ErrNoForgeEndpoint {
		t.Errorf("err = %v, want ErrNoForgeEndpoint", err)
	}
}

func TestWithHiddenAndIgnored(t *testing.T) {
	cfg, err := newResolverConfig(WithHidden("a-b", "c-d"), WithIgnored("e-f"))
	if err != nil {
		t.Fatalf("newResolverConfig: unexpected error: %v", err)
	}
	if !cfg.hide["a-b"] || !cfg.hide["c-d"] {
		t.Error("WithHidden should populate the hide set")
	}
	if !cfg.ignore["e-f"] {
		t.Error("WithIgnored should populate the ignore set")
	}
}

func TestDefaultLoggerDoesNotPanic(t *testing.T) {
	cfg, err := newResolverConfig()
	if err != nil {
		t.Fatalf("newResolverConfig: unexpected error: %v", err)
	}
	logger := cfg.log()
	logger.Info("this should be silently discarded, not panic")
}

func TestWithLoggerOverridesDefault(t *testing.T) {
	custom := slog.Default()
	cfg, err := newResolverConfig(WithLogger(custom))
	if err != nil {
		t.Fatalf("newResolverConfig: unexpected error: %v", err)
	}
	if cfg.log() != custom {
		t.Error("WithLogger should override the default discard logger")
	}
}

func TestResolutionOptionsLogFallsBackToDiscard(t *testing.T) {
	var opts ResolutionOptions
	opts.Log().Info("should not panic even with a zero-value ResolutionOptions")
}
