package service

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/allisson/ticketsentry/internal/codec"
	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
)

// ErrEmptySequence indicates a provider was built with no values.
var ErrEmptySequence = fmt.Errorf("%w: provider sequence is empty", ticketDomain.ErrInvalidFormat)

// SequencePayoutProvider cycles over a fixed list of payouts. It may be shared
// by several issuers.
type SequencePayoutProvider struct {
	mu     sync.Mutex
	values []string
	pos    int
}

// NewSequencePayoutProvider validates every payout up front.
func NewSequencePayoutProvider(values []string) (*SequencePayoutProvider, error) {
	if len(values) == 0 {
		return nil, ErrEmptySequence
	}
	for i, v := range values {
		if err := ticketDomain.ValidatePayout(v); err != nil {
			return nil, fmt.Errorf("payout %d: %w", i+1, err)
		}
	}
	return &SequencePayoutProvider{values: values}, nil
}

// LoadPayoutFile reads one payout per line. Blank lines are skipped.
func LoadPayoutFile(path string) (*SequencePayoutProvider, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	return NewSequencePayoutProvider(lines)
}

// Next returns the next payout, wrapping to the first after the last.
func (p *SequencePayoutProvider) Next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.values[p.pos]
	p.pos = (p.pos + 1) % len(p.values)
	return v, nil
}

// Restart rewinds to the first payout.
func (p *SequencePayoutProvider) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = 0
	return nil
}

// SequenceSecurityProvider cycles over a fixed list of triplets.
type SequenceSecurityProvider struct {
	mu     sync.Mutex
	values []ticketDomain.SecurityTriplet
	pos    int
}

// NewSequenceSecurityProvider validates every triplet up front.
func NewSequenceSecurityProvider(values []ticketDomain.SecurityTriplet) (*SequenceSecurityProvider, error) {
	if len(values) == 0 {
		return nil, ErrEmptySequence
	}
	for i, v := range values {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("triplet %d: %w", i+1, err)
		}
	}
	return &SequenceSecurityProvider{values: values}, nil
}

// LoadSecurityFile reads one "PIDHEX KEYHEX IVHEX" triplet per line.
func LoadSecurityFile(path string) (*SequenceSecurityProvider, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	triplets := make([]ticketDomain.SecurityTriplet, 0, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: %w: expected 3 fields", i+1, ticketDomain.ErrInvalidFormat)
		}

		var decoded [3][]byte
		for j, f := range fields {
			b, err := codec.HexDecode(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			decoded[j] = b
		}
		triplets = append(triplets, ticketDomain.SecurityTriplet{
			PrinterID: decoded[0],
			Key:       decoded[1],
			IV:        decoded[2],
		})
	}

	return NewSequenceSecurityProvider(triplets)
}

// Next returns a copy of the next triplet.
func (p *SequenceSecurityProvider) Next() (ticketDomain.SecurityTriplet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.values[p.pos]
	p.pos = (p.pos + 1) % len(p.values)
	return v.Clone(), nil
}

// Restart rewinds to the first triplet.
func (p *SequenceSecurityProvider) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = 0
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // operator-supplied provider file
	if err != nil {
		return nil, fmt.Errorf("failed to open provider file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	return scanLines(f)
}

func scanLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read provider file: %w", err)
	}
	return lines, nil
}
