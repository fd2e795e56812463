package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/causal/pkg/domain"
)

// Chain returns hooks that invoke every given hook set in order.
func Chain(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompile: func(ctx context.Context, e *domain.CompileEvent) {
			for _, h := range sets {
				if h.OnCompile != nil {
					h.OnCompile(ctx, e)
				}
			}
		},
		OnCheck: func(ctx context.Context, e *domain.CheckEvent) {
			for _, h := range sets {
				if h.OnCheck != nil {
					h.OnCheck(ctx, e)
				}
			}
		},
		OnRefine: func(ctx context.Context, e *domain.RefineEvent) {
			for _, h := range sets {
				if h.OnRefine != nil {
					h.OnRefine(ctx, e)
				}
			}
		},
		OnReload: func(ctx context.Context, e *domain.ReloadEvent) {
			for _, h := range sets {
				if h.OnReload != nil {
					h.OnReload(ctx, e)
				}
			}
		},
	}
}

// LogHooks returns hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCompile: func(ctx context.Context, e *domain.CompileEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "compile_failed", "theory", e.Theory, "program", e.Program, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "compile", "theory", e.Theory, "program", e.Program, "duration", e.Duration)
		},
		OnCheck: func(ctx context.Context, e *domain.CheckEvent) {
			logger.InfoContext(ctx, "check",
				"source", e.Source,
				"target", e.Target,
				"failures", e.Failures,
				"duration", e.Duration,
			)
		},
		OnRefine: func(ctx context.Context, e *domain.RefineEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "refine_failed", "theory", e.Theory, "generator", e.Generator, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "refine", "theory", e.Theory, "generator", e.Generator)
		},
		OnReload: func(ctx context.Context, e *domain.ReloadEvent) {
			logger.InfoContext(ctx, "reload", "theory", e.Theory)
		},
	}
}
