package phttp

// Context wraps one request plus the shared data bag visible to every
// middleware stage during a single traversal. Its lifetime equals one
// pipeline execution; it is never shared across requests and is not safe for
// concurrent use within one.
//
// The shared data bag is a flat string map with no namespacing: any stage may
// overwrite any key, and a later-registered middleware can silently clobber
// an earlier one's value. This is a deliberate flexibility trade-off; pick
// distinctive keys.
type Context struct {
	Request *Request

	sharedData map[string]string
}

// NewContext wraps a request for one pipeline execution.
func NewContext(req *Request) *Context {
	return &Context{
		Request:    req,
		sharedData: make(map[string]string),
	}
}

// Set stores a value in the shared data bag, last-write-wins.
func (c *Context) Set(key, value string) { c.sharedData[key] = value }

// Get returns a shared value and whether it was present.
func (c *Context) Get(key string) (string, bool) {
	v, ok := c.sharedData[key]
	return v, ok
}

// Delete removes a shared value, returning the previous value if any.
func (c *Context) Delete(key string) (string, bool) {
	v, ok := c.sharedData[key]
	delete(c.sharedData, key)

	return v, ok
}
