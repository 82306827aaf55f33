// Copyright (c) 2024-2026 VoicebankAI
//
// Licensed under GPL-2.0. See LICENSE.md for details.
package uploader

import "fmt"

// OutcomeKind tags the terminal result of a submission.
type OutcomeKind int

const (
	// KindDelivered means the remote collection service acknowledged the
	// recording itself.
	KindDelivered OutcomeKind = iota
	// KindAcceptedLocally means the proxy kept the recording because the
	// remote service was unreachable. From the volunteer's perspective
	// this is a success: the take is not lost.
	KindAcceptedLocally
	// KindFailed means every attempt was exhausted or the request was
	// rejected as a caller error. The take must be preserved for retry.
	KindFailed
)

// Outcome is the classified result of Submit. Exactly one variant applies;
// Attempts records how many requests were actually made.
type Outcome struct {
	Kind     OutcomeKind
	Status   int
	Body     []byte
	Reason   string
	Err      error
	Attempts int
}

func Delivered(status int, body []byte, attempts int) Outcome {
	return Outcome{Kind: KindDelivered, Status: status, Body: body, Attempts: attempts}
}

func AcceptedLocally(reason string, status int, body []byte, attempts int) Outcome {
	return Outcome{Kind: KindAcceptedLocally, Status: status, Body: body, Reason: reason, Attempts: attempts}
}

func Failed(err error, status int, attempts int) Outcome {
	return Outcome{Kind: KindFailed, Status: status, Err: err, Attempts: attempts}
}

// Succeeded reports whether the volunteer should treat the submission as
// complete. AcceptedLocally counts: the recording was captured and will
// not be discarded.
func (o Outcome) Succeeded() bool {
	return o.Kind != KindFailed
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindDelivered:
		return fmt.Sprintf("delivered (%s, attempts=%d)", StatusText(o.Status), o.Attempts)
	case KindAcceptedLocally:
		return fmt.Sprintf("accepted locally (%s, attempts=%d)", o.Reason, o.Attempts)
	default:
		return fmt.Sprintf("failed (%s, attempts=%d): %v", StatusText(o.Status), o.Attempts, o.Err)
	}
}
