package ai

import (
	"context"

	"jobfit/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	Analyze(ctx context.Context, input types.AnalyzeInput) (types.AnalyzeOutput, *TokenUsage, error)
	FollowUp(ctx context.Context, input types.FollowUpInput) (types.FollowUpOutput, *TokenUsage, error)
	Rewrite(ctx context.Context, input types.RewriteInput) (types.RewriteOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
