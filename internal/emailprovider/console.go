package emailprovider

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleProvider logs outbound emails instead of sending them. Useful for
// local development, mirroring the teacher's ConsoleEmailService.
type ConsoleProvider struct {
	logger *zap.SugaredLogger
}

// NewConsoleProvider builds a ConsoleProvider.
func NewConsoleProvider(logger *zap.SugaredLogger) *ConsoleProvider {
	return &ConsoleProvider{logger: logger}
}

// Send logs req at info level and always succeeds.
func (p *ConsoleProvider) Send(ctx context.Context, req SendRequest) error {
	p.logger.Infow("console email provider: simulated send",
		"from", req.From,
		"to", req.To,
		"subject", req.Subject,
		"text_body", req.TextBody,
	)
	return nil
}
