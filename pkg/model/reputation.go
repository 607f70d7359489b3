package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"github.com/ethereum/go-ethereum/common"
)

const (
	// RegistrationScore is added to a publisher's score per registration
	RegistrationScore = 10
	// VerificationScore is added to a publisher's score per credited verification
	VerificationScore = 5
)

// NewPublisherReputation is a convenience function to init a PublisherReputation
func NewPublisherReputation(publisher common.Address, totalRegistrations uint64,
	verificationCount uint64, reputationScore uint64) *PublisherReputation {
	return &PublisherReputation{
		publisher:          publisher,
		totalRegistrations: totalRegistrations,
		verificationCount:  verificationCount,
		reputationScore:    reputationScore,
	}
}

// PublisherReputation holds the counters derived from a publisher's registry
// activity. A publisher never referenced before has all zero counters.
type PublisherReputation struct {
	publisher common.Address

	totalRegistrations uint64

	verificationCount uint64

	reputationScore uint64
}

// Publisher returns the publisher address
func (p *PublisherReputation) Publisher() common.Address {
	return p.publisher
}

// TotalRegistrations returns the number of successful registrations
func (p *PublisherReputation) TotalRegistrations() uint64 {
	return p.totalRegistrations
}

// VerificationCount returns the number of credited verifications of the
// publisher's content
func (p *PublisherReputation) VerificationCount() uint64 {
	return p.verificationCount
}

// ReputationScore returns the derived reputation score
func (p *PublisherReputation) ReputationScore() uint64 {
	return p.reputationScore
}

// CreditRegistration applies one registration to the counters
func (p *PublisherReputation) CreditRegistration() {
	p.totalRegistrations++
	p.reputationScore += RegistrationScore
}

// CreditVerification applies one verification to the counters
func (p *PublisherReputation) CreditVerification() {
	p.verificationCount++
	p.reputationScore += VerificationScore
}
