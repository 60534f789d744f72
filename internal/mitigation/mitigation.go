// Package mitigation implements the external shell-out collaborator named
// in spec.md §6: per-address blocklist and per-interface rate-limit
// operations, idempotent within a run, grounded on
// original_source/ddos_mpi_detector/src/core/mitigation_engine.c's
// already-applied address guard.
package mitigation

import (
	"context"
	"errors"
	"os/exec"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sandia-netshield/netshield/internal/errs"
)

// Executor runs the actual OS-level command for a mitigation action. The
// default implementation shells out via os/exec; tests substitute a fake.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecExecutor runs commands through os/exec.CommandContext.
type ExecExecutor struct{}

// Run implements Executor.
func (ExecExecutor) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// RateLimit configures a token-bucket shaper applied before every
// rate-limit shell-out, so a pathological number of suspect addresses in
// one run cannot itself become a self-inflicted denial of service against
// the firewall control plane.
type RateLimit struct {
	RatePerSec float64
	Burst      int
}

// Engine applies blocklist and rate-limit mitigations, once per address per
// run.
type Engine struct {
	exec      Executor
	limiter   *rate.Limiter
	privilege bool // set false once a PrivilegeError disables mitigation

	mu      sync.Mutex
	applied map[string]bool
}

// New constructs an Engine. hasPrivilege reflects whether the caller holds
// sufficient OS privilege to apply firewall rules; when false, every
// Block/RateLimitAddr call returns a PrivilegeError and mitigation disables
// itself for the remainder of the run (spec.md §7 policy: warn and
// disable, continue).
func New(exec Executor, limit RateLimit, hasPrivilege bool) *Engine {
	var limiter *rate.Limiter
	if limit.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(limit.RatePerSec), limit.Burst)
	} else {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Engine{
		exec:      exec,
		limiter:   limiter,
		privilege: hasPrivilege,
		applied:   make(map[string]bool),
	}
}

// Disabled reports whether a prior PrivilegeError has disabled mitigation
// for the rest of the run.
func (e *Engine) Disabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.privilege
}

// Block adds a drop rule for addr. A second call for the same address
// within this Engine's lifetime is a no-op, per spec.md §8's idempotence
// property.
func (e *Engine) Block(ctx context.Context, addr string) error {
	return e.applyOnce(ctx, "block:"+addr, func() error {
		return e.exec.Run(ctx, "iptables", "-A", "INPUT", "-s", addr, "-j", "DROP")
	})
}

// RateLimitAddr adds a rate-limit filter on iface for addr with the given
// rate and burst, shaped by this Engine's own token bucket so repeated
// calls do not flood the underlying command.
func (e *Engine) RateLimitAddr(ctx context.Context, iface, addr string, ratePerSec, burst int) error {
	key := "ratelimit:" + iface + ":" + addr
	return e.applyOnce(ctx, key, func() error {
		if err := e.limiter.Wait(ctx); err != nil {
			return errs.Wrap(errs.KindResource, err, "rate limiter wait")
		}
		return e.exec.Run(ctx, "tc", "filter", "add", "dev", iface,
			"protocol", "ip", "parent", "1:", "prio", "1", "u32",
			"match", "ip", "src", addr,
			"police", "rate", itoaPerSec(ratePerSec), "burst", itoaPerSec(burst))
	})
}

func (e *Engine) applyOnce(ctx context.Context, key string, action func() error) error {
	e.mu.Lock()
	if !e.privilege {
		e.mu.Unlock()
		return errs.New(errs.KindPrivilege, "mitigation disabled: insufficient privilege")
	}
	if e.applied[key] {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	if err := action(); err != nil {
		if isPrivilegeError(err) {
			e.mu.Lock()
			e.privilege = false
			e.mu.Unlock()
			return errs.Wrap(errs.KindPrivilege, err, "mitigation requires elevated privilege")
		}
		return errs.Wrap(errs.KindResource, err, "mitigation command failed")
	}

	e.mu.Lock()
	e.applied[key] = true
	e.mu.Unlock()
	return nil
}

// isPrivilegeError heuristically detects an OS permission failure from a
// shelled-out command's exit error. Real netfilter/tc failures surface as a
// non-zero exit status with no portable error code, so this is
// best-effort: an *exec.ExitError alone cannot be distinguished from other
// causes without parsing stderr, which mitigation commands format
// inconsistently across platforms.
func isPrivilegeError(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return exitErr.ExitCode() == 1
}

func itoaPerSec(n int) string {
	if n <= 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
