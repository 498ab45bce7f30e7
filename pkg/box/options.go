package box

// CallOption tunes a single SDK call.
type CallOption func(*callOptions)

type callOptions struct {
	fields     []Field
	sharedLink string
	recursive  bool
	offset     int
	limit      int
}

func collectOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithFields restricts the attributes returned for the item(s). Without it
// the service returns its default field set.
func WithFields(fields ...Field) CallOption {
	return func(o *callOptions) { o.fields = append(o.fields, fields...) }
}

// WithSharedLink accesses the item through a shared link the caller does not
// own, sending it in the BoxApi header.
func WithSharedLink(url string) CallOption {
	return func(o *callOptions) { o.sharedLink = url }
}

// Recursive allows deleting a folder that still has content.
func Recursive(recursive bool) CallOption {
	return func(o *callOptions) { o.recursive = recursive }
}

// WithPage selects a window of a folder listing.
func WithPage(offset, limit int) CallOption {
	return func(o *callOptions) {
		o.offset = offset
		o.limit = limit
	}
}
