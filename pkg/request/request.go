// Package request holds the blocking operations the launcher runs behind the
// processing overlay.
package request

// Request is one blocking remote or local operation. Execute runs on a worker
// goroutine and must not touch loop-confined state.
type Request[T any] interface {
	Execute() (T, error)
}

// Func adapts a plain function to Request.
type Func[T any] func() (T, error)

func (f Func[T]) Execute() (T, error) { return f() }
