package biometric

import (
	"context"
	"sync"
)

// StaticProbe answers from fixed values. It stands in for devices without
// biometric hardware and is used by tests.
type StaticProbe struct {
	mu sync.Mutex

	Available    bool
	AvailableErr error
	Outcome      Result
	ChallengeErr error

	// Prompts records every prompt passed to Challenge.
	Prompts []Prompt
}

// Unavailable returns a probe for a device with no biometric hardware.
func Unavailable() *StaticProbe {
	return &StaticProbe{Outcome: NotEnrolled}
}

func (p *StaticProbe) IsAvailable(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Available, p.AvailableErr
}

func (p *StaticProbe) Challenge(ctx context.Context, prompt Prompt) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Prompts = append(p.Prompts, prompt)
	if err := ctx.Err(); err != nil {
		return UserCancelled, nil
	}
	return p.Outcome, p.ChallengeErr
}
