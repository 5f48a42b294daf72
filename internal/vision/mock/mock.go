// Package mock provides a scriptable vision.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/starford/ansuz/internal/vision"
)

// Provider implements vision.Provider with configurable results.
type Provider struct {
	mu sync.Mutex

	// DescribeResult and DescribeErr are returned by DescribeImage.
	DescribeResult string
	DescribeErr    error

	// SimplifyResult and SimplifyErr are returned by SimplifyText.
	SimplifyResult string
	SimplifyErr    error

	describeCalls int
	simplifyCalls int
}

// Compile-time interface assertion.
var _ vision.Provider = (*Provider)(nil)

// DescribeImage returns the configured result or error.
func (p *Provider) DescribeImage(_ context.Context, _ []byte, _ string) (string, error) {
	p.mu.Lock()
	p.describeCalls++
	p.mu.Unlock()
	if p.DescribeErr != nil {
		return "", p.DescribeErr
	}
	return p.DescribeResult, nil
}

// SimplifyText returns the configured result or error.
func (p *Provider) SimplifyText(_ context.Context, _ string) (string, error) {
	p.mu.Lock()
	p.simplifyCalls++
	p.mu.Unlock()
	if p.SimplifyErr != nil {
		return "", p.SimplifyErr
	}
	return p.SimplifyResult, nil
}

// DescribeCalls returns how many times DescribeImage was invoked.
func (p *Provider) DescribeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.describeCalls
}

// SimplifyCalls returns how many times SimplifyText was invoked.
func (p *Provider) SimplifyCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.simplifyCalls
}
