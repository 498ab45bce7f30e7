// Package box (async.go) runs SDK calls on their own goroutine. Every call
// returns a Future that resolves exactly once with either a value or an
// error; Then adapts a Future to a pair of completion callbacks.
package box

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Future is the pending outcome of an asynchronous call.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve records the outcome. Only the first call has an effect.
func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

// Submit runs fn on a new goroutine. A panic in fn resolves the future with
// ErrOperationFailed.
//
// Example:
//
//	f := box.Submit(ctx, func(ctx context.Context) (int, error) { return 42, nil })
//	n, err := f.Await(ctx)
func Submit[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.resolve(zero, fmt.Errorf("%w: panic: %v", ErrOperationFailed, r))
			}
		}()
		f.resolve(fn(ctx))
	}()
	return f
}

// Done is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the outcome is available or ctx ends. A ctx ending
// only stops the wait; the call itself keeps running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while the call is
// still running.
func (f *Future[T]) Result() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Then invokes exactly one of onSuccess or onFailure, from another
// goroutine, once f resolves. Either callback may be nil.
func Then[T any](f *Future[T], onSuccess func(T), onFailure func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onFailure != nil {
				onFailure(f.err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(f.value)
		}
	}()
}

// AsyncClient exposes every Client call in asynchronous form.
type AsyncClient struct {
	c *Client
}

// Async returns the asynchronous view of c. It shares c's transport.
func (c *Client) Async() *AsyncClient { return &AsyncClient{c: c} }

func (a *AsyncClient) Get(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Get(ctx, itemType, id, pre, opts...)
	})
}

func (a *AsyncClient) GetFolder(ctx context.Context, id string, pre Precondition, opts ...CallOption) *Future[Folder] {
	return a.Get(ctx, TypeFolder, id, pre, opts...)
}

func (a *AsyncClient) GetFile(ctx context.Context, id string, pre Precondition, opts ...CallOption) *Future[File] {
	return a.Get(ctx, TypeFile, id, pre, opts...)
}

func (a *AsyncClient) ListItems(ctx context.Context, folderID string, opts ...CallOption) *Future[ItemCollection] {
	return Submit(ctx, func(ctx context.Context) (ItemCollection, error) {
		return a.c.ListItems(ctx, folderID, opts...)
	})
}

func (a *AsyncClient) ListAllItems(ctx context.Context, folderID string, opts ...CallOption) *Future[[]Item] {
	return Submit(ctx, func(ctx context.Context) ([]Item, error) {
		return a.c.ListAllItems(ctx, folderID, opts...)
	})
}

func (a *AsyncClient) CreateFolder(ctx context.Context, parentID, name string, opts ...CallOption) *Future[Folder] {
	return Submit(ctx, func(ctx context.Context) (Folder, error) {
		return a.c.CreateFolder(ctx, parentID, name, opts...)
	})
}

// Delete resolves with an empty value on success.
func (a *AsyncClient) Delete(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) *Future[struct{}] {
	return Submit(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.c.Delete(ctx, itemType, id, pre, opts...)
	})
}

func (a *AsyncClient) DeleteFolder(ctx context.Context, id string, recursive bool, pre Precondition) *Future[struct{}] {
	return a.Delete(ctx, TypeFolder, id, pre, Recursive(recursive))
}

func (a *AsyncClient) DeleteFile(ctx context.Context, id string, pre Precondition) *Future[struct{}] {
	return a.Delete(ctx, TypeFile, id, pre)
}

func (a *AsyncClient) Copy(ctx context.Context, itemType ItemType, id, parentID, newName string, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Copy(ctx, itemType, id, parentID, newName, opts...)
	})
}

func (a *AsyncClient) Update(ctx context.Context, itemType ItemType, id string, update UpdateRequest, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Update(ctx, itemType, id, update, pre, opts...)
	})
}

func (a *AsyncClient) Move(ctx context.Context, itemType ItemType, id, parentID string, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Move(ctx, itemType, id, parentID, pre, opts...)
	})
}

func (a *AsyncClient) Rename(ctx context.Context, itemType ItemType, id, name string, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Rename(ctx, itemType, id, name, pre, opts...)
	})
}

func (a *AsyncClient) SetDescription(ctx context.Context, itemType ItemType, id, description string, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.SetDescription(ctx, itemType, id, description, pre, opts...)
	})
}

func (a *AsyncClient) Share(ctx context.Context, itemType ItemType, id string, link SharedLinkSpec, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Share(ctx, itemType, id, link, pre, opts...)
	})
}

func (a *AsyncClient) Unshare(ctx context.Context, itemType ItemType, id string, pre Precondition, opts ...CallOption) *Future[Item] {
	return Submit(ctx, func(ctx context.Context) (Item, error) {
		return a.c.Unshare(ctx, itemType, id, pre, opts...)
	})
}

// Download resolves with an open Content the caller must Close.
func (a *AsyncClient) Download(ctx context.Context, id string, opts ...CallOption) *Future[*Content] {
	return Submit(ctx, func(ctx context.Context) (*Content, error) {
		return a.c.Download(ctx, id, opts...)
	})
}

// Upload reads content on the worker goroutine; the caller must not touch
// it until the future resolves.
func (a *AsyncClient) Upload(ctx context.Context, parentID, name string, content io.Reader, opts ...CallOption) *Future[File] {
	return Submit(ctx, func(ctx context.Context) (File, error) {
		return a.c.Upload(ctx, parentID, name, content, opts...)
	})
}

func (a *AsyncClient) UploadVersion(ctx context.Context, id, name string, content io.Reader, pre Precondition, opts ...CallOption) *Future[File] {
	return Submit(ctx, func(ctx context.Context) (File, error) {
		return a.c.UploadVersion(ctx, id, name, content, pre, opts...)
	})
}

func (a *AsyncClient) GetCurrentUser(ctx context.Context, opts ...CallOption) *Future[User] {
	return Submit(ctx, func(ctx context.Context) (User, error) {
		return a.c.GetCurrentUser(ctx, opts...)
	})
}
