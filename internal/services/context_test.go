package services_test

import (
	"context"
	"testing"

	"mclocale/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithEdition(ctx, "bedrock")
	ctx = services.WithVersion(ctx, "1.21.0")
	ctx = services.WithStage(ctx, "extract")
	ctx = services.WithRunID(ctx, "run-123")

	if edition, ok := services.EditionFromContext(ctx); !ok || edition != "bedrock" {
		t.Fatalf("unexpected edition: %v %v", edition, ok)
	}
	if version, ok := services.VersionFromContext(ctx); !ok || version != "1.21.0" {
		t.Fatalf("unexpected version: %v %v", version, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "extract" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
}

func TestStageBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
}
