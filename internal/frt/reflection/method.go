// Package reflection implements method registration and introspection:
// the Method/ReflectionManager/ReflectionBuilder trio, and the built-in
// frt.rpc.* introspection methods a Supervisor installs on itself.
package reflection

import "github.com/marmos91/frtrpc/internal/frt/rpcrequest"

// HandlerFunc is a registered method's invocation target. Go's garbage
// collector makes the original's two invocation shapes (borrowing the
// request vs. taking ownership for handover) collapse into one signature:
// a handler that wants deferred completion calls req.Detach() and keeps
// its own reference (req.AddRef()) for as long as it needs; one that
// completes synchronously just returns.
type HandlerFunc func(req *rpcrequest.Request)

// AccessFilter decides whether a request is permitted to invoke a method.
// See internal/frt/filter for the concrete RequireCapabilities
// implementation.
type AccessFilter interface {
	CheckAccess(req *rpcrequest.Request) bool
}

// Doc holds a method's documentation: description, the param/return specs
// it was registered with, and a name/description pair per parameter and
// return value. Unlike the original, which serialized this into a byte
// blob purely to store it as a FRT_Values-shaped buffer, this is kept as
// a plain struct: Go doesn't need the serialize-to-bytes indirection,
// since GetMethodInfo can build its reply Values directly from these
// fields.
type Doc struct {
	Description string
	ParamNames  []string
	ParamDescs  []string
	ReturnNames []string
	ReturnDescs []string
}

// Method is immutable after registration: name, specs, handler, and
// optional documentation/access filter.
type Method struct {
	name       string
	paramSpec  string
	returnSpec string
	handler    HandlerFunc
	doc        Doc
	filter     AccessFilter
}

// Name returns the method's registered name.
func (m *Method) Name() string { return m.name }

// ParamSpec returns the method's parameter type-string.
func (m *Method) ParamSpec() string { return m.paramSpec }

// ReturnSpec returns the method's return type-string.
func (m *Method) ReturnSpec() string { return m.returnSpec }

// Handler returns the method's invocation target.
func (m *Method) Handler() HandlerFunc { return m.handler }

// Doc returns the method's documentation.
func (m *Method) Doc() Doc { return m.doc }

// AccessFilter returns the method's access filter, or nil if none was
// registered.
func (m *Method) AccessFilter() AccessFilter { return m.filter }
