package domain

import "errors"

// Error taxonomy for the order/credit adapter. Every error is surfaced at
// build time, before any signature is produced; callers match with errors.Is.
var (
	ErrEncodingShapeMismatch   = errors.New("encoding shape mismatch")
	ErrUnknownProtocol         = errors.New("unknown protocol")
	ErrEmptyItemSet            = errors.New("empty item set")
	ErrUnauthorizedSigner      = errors.New("unauthorized signer")
	ErrCreditExceedsOrderValue = errors.New("credit exceeds order value")
	ErrSelfTradeRejected       = errors.New("self trade rejected")
	ErrStaleNonce              = errors.New("stale nonce")
	ErrInvalidFeeBasisPoints   = errors.New("invalid fee basis points")
)
