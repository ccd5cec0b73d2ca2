package scanner

import (
	"context"
	"testing"

	"NewsCapsule/internal/domain"
)

type namedScanner struct{ name string }

func (n *namedScanner) Name() string { return n.name }

func (n *namedScanner) Scan(context.Context, Request) ([]domain.RawArticle, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&namedScanner{name: "rss"})

	got, err := reg.Resolve("rss")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name() != "rss" {
		t.Fatalf("unexpected scanner: %s", got.Name())
	}

	if _, err := reg.Resolve("missing"); err == nil {
		t.Fatal("expected error for unknown scanner")
	}
}

func TestRegistryReplaces(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := &namedScanner{name: "newsapi"}
	second := &namedScanner{name: "newsapi"}
	reg.Register(first)
	reg.Register(second)

	got, err := reg.Resolve("newsapi")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != second {
		t.Fatal("registering the same name must replace the scanner")
	}
}
