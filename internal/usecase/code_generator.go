package usecase

import (
	"context"
	"crypto/rand"
	"fmt"

	"ticket-sales/internal/data/repository"
	"ticket-sales/pkg/metrics"

	"go.uber.org/zap"
)

const (
	CodeLength      = 8
	CodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxCodeAttempts = 100
)

// CodeGenerator issues ticket codes that no live, active ticket holds.
type CodeGenerator interface {
	// Generate returns a fresh code. Codes present in taken are treated as
	// collisions; the returned code is added to taken when it is non-nil.
	Generate(ctx context.Context, taken map[string]struct{}) (string, error)
}

type codeGenerator struct {
	tickets     repository.TicketRepository
	draw        func() (string, error)
	maxAttempts int
	log         *zap.Logger
}

func NewCodeGenerator(tickets repository.TicketRepository, log *zap.Logger) CodeGenerator {
	return &codeGenerator{
		tickets:     tickets,
		draw:        RandomCode,
		maxAttempts: MaxCodeAttempts,
		log:         log.With(zap.String("component", "code_generator")),
	}
}

func (g *codeGenerator) Generate(ctx context.Context, taken map[string]struct{}) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		code, err := g.draw()
		if err != nil {
			return "", fmt.Errorf("draw code: %w", err)
		}

		if _, dup := taken[code]; dup {
			metrics.CodeCollisions.Inc()
			continue
		}

		existing, err := g.tickets.FindActiveByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check code uniqueness: %w", err)
		}
		if existing != nil {
			metrics.CodeCollisions.Inc()
			g.log.Debug("Generated code already taken",
				zap.String("code", code),
				zap.Int("attempt", attempt),
			)
			continue
		}

		if taken != nil {
			taken[code] = struct{}{}
		}
		return code, nil
	}

	g.log.Error("Code generation exhausted", zap.Int("attempts", g.maxAttempts))
	return "", fmt.Errorf("%w (%d attempts)", ErrExhaustedRetries, g.maxAttempts)
}

// RandomCode draws CodeLength symbols uniformly from CodeAlphabet.
func RandomCode() (string, error) {
	// largest multiple of len(CodeAlphabet) that fits in a byte
	const limit = 256 - 256%len(CodeAlphabet)

	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(code) < CodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, CodeAlphabet[int(b)%len(CodeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code), nil
}
