package box

import (
	"fmt"
	"net/http"
)

type preconditionKind uint8

const (
	preconditionNone preconditionKind = iota
	preconditionIfMatch
	preconditionIfNoneMatch
)

// Precondition is the optimistic-concurrency guard threaded through get,
// update, delete and upload calls. The zero value is NoPrecondition.
type Precondition struct {
	kind preconditionKind
	etag string
}

// NoPrecondition sends the request unconditionally.
func NoPrecondition() Precondition { return Precondition{} }

// IfMatch makes a write fail with ErrStaleVersion unless the stored etag
// equals etag.
func IfMatch(etag string) Precondition {
	return Precondition{kind: preconditionIfMatch, etag: etag}
}

// IfNoneMatch makes a read fail with ErrNotModified when the stored etag
// still equals etag.
func IfNoneMatch(etag string) Precondition {
	return Precondition{kind: preconditionIfNoneMatch, etag: etag}
}

// IsNone reports whether p carries no condition.
func (p Precondition) IsNone() bool { return p.kind == preconditionNone }

// ETag returns the etag the condition compares against.
func (p Precondition) ETag() string { return p.etag }

func (p Precondition) String() string {
	switch p.kind {
	case preconditionIfMatch:
		return fmt.Sprintf("If-Match %q", p.etag)
	case preconditionIfNoneMatch:
		return fmt.Sprintf("If-None-Match %q", p.etag)
	default:
		return "none"
	}
}

// check validates p for an operation that is either a read or a write.
func (p Precondition) check(write bool) error {
	switch p.kind {
	case preconditionNone:
		return nil
	case preconditionIfMatch:
		if !write {
			return invalidInput("If-Match is only valid on writes")
		}
	case preconditionIfNoneMatch:
		if write {
			return invalidInput("If-None-Match is only valid on reads")
		}
	}
	if p.etag == "" {
		return invalidInput("%s requires an etag", p)
	}
	return nil
}

func (p Precondition) apply(h http.Header) {
	switch p.kind {
	case preconditionIfMatch:
		h.Set(HeaderIfMatch, p.etag)
	case preconditionIfNoneMatch:
		h.Set(HeaderIfNoneMatch, p.etag)
	}
}
