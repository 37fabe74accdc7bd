package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/unparse/pkg/domain"
	"github.com/aretw0/unparse/pkg/tree"
)

func TestService_LockLifecycle(t *testing.T) {
	svc := New()
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		key := fmt.Sprintf("render-%d", i)
		_ = svc.WithLock(ctx, key, func(context.Context) error { return nil })
	}

	lockCount := len(svc.locks)
	t.Logf("Keys Locked: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory", lockCount)
	}
}

func TestService_UnparserMemoBounded(t *testing.T) {
	svc := New()
	ctx := context.Background()
	root := &tree.Node{Type: "Identifier", Value: "a"}

	for i := 0; i < 500; i++ {
		_, err := svc.Render(ctx, Request{Indent: strings.Repeat(" ", i+MaxIndent+1), Tree: root})
		if !errors.Is(err, domain.ErrInvalidConfig) {
			t.Fatalf("indent of %d spaces: got %v, want an invalid config error", i+MaxIndent+1, err)
		}
	}
	for i := 1; i <= MaxIndent; i++ {
		for _, unit := range []string{" ", "\t"} {
			if _, err := svc.Render(ctx, Request{Indent: strings.Repeat(unit, i), Tree: root}); err != nil {
				t.Fatalf("indent %q: %v", strings.Repeat(unit, i), err)
			}
		}
	}

	if n := len(svc.unparsers); n != 2*MaxIndent {
		t.Errorf("Memoized Unparsers: got %d, want %d", n, 2*MaxIndent)
	}
}
