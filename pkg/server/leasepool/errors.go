package leasepool

// Error codes carried on the wire. The values are part of the API contract
// and must not be renumbered.
const (
	CodeNoIDAvailable = 1
	CodeIDExpired     = 2
	CodeIDNonexistent = 3
)

// Error is an allocator failure with a fixed wire code. All three are
// expected, recoverable outcomes for the caller, never process-fatal.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	// ErrNoIDAvailable means the pool is exhausted; callers should back off
	// and retry.
	ErrNoIDAvailable = &Error{Code: CodeNoIDAvailable, Msg: "No id available!"}

	// ErrIDExpired means the caller's lease lapsed and the id has been
	// reclaimed; the caller must acquire again.
	ErrIDExpired = &Error{Code: CodeIDExpired, Msg: "Id expired!"}

	// ErrIDNonexistent means the id is not currently leased: never issued,
	// already reclaimed, or out of range.
	ErrIDNonexistent = &Error{Code: CodeIDNonexistent, Msg: "Id nonexistent!"}
)
