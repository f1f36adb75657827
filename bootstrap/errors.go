package bootstrap

import "github.com/pkg/errors"

// Kind classifies why a bootstrap session ended, per spec.md §7.
type Kind int

const (
	// KindTransport covers socket read/write/connect failure or EOF
	// mid-message. The session aborts; any open transaction rolls back.
	KindTransport Kind = iota
	// KindProtocol covers an unknown type tag, malformed header, or a
	// frontier record out of order. Handled identically to transport.
	KindProtocol
	// KindDependencyMissing covers retrieve returning no block during a
	// synchronize walk. Only the current walk aborts; the session may
	// continue with the next account.
	KindDependencyMissing
	// KindValidatorRejected covers the target callback rejecting a
	// block. Treated like KindDependencyMissing: the rejected chain is
	// abandoned for this session.
	KindValidatorRejected
	// KindStore covers a transaction commit failure: fatal for the
	// session.
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindDependencyMissing:
		return "dependency_missing"
	case KindValidatorRejected:
		return "validator_rejected"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with the Kind the session handler
// uses to decide whether the whole session aborts (transport, protocol,
// store) or only the current synchronize walk does (dependency missing,
// validator rejected).
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

func wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: errors.Wrap(cause, msg)}
}

// Fatal reports whether an error of this kind must abort the whole
// session, as opposed to just the current synchronize walk.
func (k Kind) Fatal() bool {
	switch k {
	case KindTransport, KindProtocol, KindStore:
		return true
	default:
		return false
	}
}
