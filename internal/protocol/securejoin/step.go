package securejoin

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Step is the next message BobState expects from the inviter.
type Step int

const (
	// StepAuthRequired waits for vc-auth-required or vg-auth-required.
	StepAuthRequired Step = iota
	// StepContactConfirm waits for vc-contact-confirm or vg-member-added.
	StepContactConfirm
	// StepTerminated marks a handshake that failed. Its record is gone.
	StepTerminated
	// StepCompleted marks a finished handshake. Its record is gone.
	StepCompleted
)

// String returns a short label for the step.
func (s Step) String() string {
	switch s {
	case StepAuthRequired:
		return "auth-required"
	case StepContactConfirm:
		return "contact-confirm"
	case StepTerminated:
		return "terminated"
	case StepCompleted:
		return "completed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// ToCode returns the integer stored for s.
func (s Step) ToCode() int64 {
	switch s {
	case StepAuthRequired:
		return 0
	case StepContactConfirm:
		return 1
	case StepTerminated:
		return 2
	default:
		return 3
	}
}

// StepFromCode is the inverse of ToCode.
func StepFromCode(code int64) (Step, error) {
	switch code {
	case 0:
		return StepAuthRequired, nil
	case 1:
		return StepContactConfirm, nil
	case 2:
		return StepTerminated, nil
	case 3:
		return StepCompleted, nil
	default:
		return 0, fmt.Errorf("securejoin: step code %d out of range", code)
	}
}

// matches compares a Secure-Join header value with s, ignoring the variant.
func (s Step) matches(tag string) bool {
	switch s {
	case StepAuthRequired:
		return tag == tagContactAuthRequired || tag == tagGroupAuthRequired
	case StepContactConfirm:
		return tag == tagContactConfirm || tag == tagGroupMemberAdded
	default:
		logrus.WithFields(logrus.Fields{
			"function": "matches",
			"step":     s.String(),
			"tag":      tag,
		}).Warn("Queried finished handshake for next step")
		return false
	}
}
