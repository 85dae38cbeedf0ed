package reflection

// Builder registers methods against a Manager, buffering one method's
// documentation until the next DefineMethod call or Close, at which point
// any param/return name or description left unset is padded with
// placeholder strings so the doc always declares exactly len(paramSpec)
// params and len(returnSpec) returns.
//
// Builder is not safe for concurrent use; it's meant to be used from a
// single setup goroutine when a Supervisor installs its methods.
type Builder struct {
	manager *Manager
	pending *pendingMethod
}

type pendingMethod struct {
	method *Method

	paramNames  []string
	paramDescs  []string
	returnNames []string
	returnDescs []string

	curParam  int
	curReturn int
}

const (
	placeholderName = "?"
	placeholderDesc = "???"
)

// NewBuilder returns a Builder that registers methods into manager.
func NewBuilder(manager *Manager) *Builder {
	return &Builder{manager: manager}
}

// DefineMethod flushes any previously buffered method and begins
// buffering a new one. A nil handler is a no-op (mirrors the original,
// which silently refuses to register a method without a handler).
func (b *Builder) DefineMethod(name, paramSpec, returnSpec string, handler HandlerFunc) {
	if handler == nil {
		return
	}
	b.Flush()

	argCnt := len(paramSpec)
	retCnt := len(returnSpec)

	method := &Method{
		name:       name,
		paramSpec:  paramSpec,
		returnSpec: returnSpec,
		handler:    handler,
		doc:        Doc{Description: placeholderDesc},
	}
	b.manager.AddMethod(method)

	b.pending = &pendingMethod{
		method:      method,
		paramNames:  make([]string, argCnt),
		paramDescs:  make([]string, argCnt),
		returnNames: make([]string, retCnt),
		returnDescs: make([]string, retCnt),
	}
}

// MethodDesc sets the current method's description. A no-op if no method
// is being defined.
func (b *Builder) MethodDesc(desc string) {
	if b.pending == nil {
		return
	}
	b.pending.method.doc.Description = desc
}

// ParamDesc records the name/description of the next undocumented
// parameter. A no-op once every parameter has been documented.
func (b *Builder) ParamDesc(name, desc string) {
	if b.pending == nil || b.pending.curParam >= len(b.pending.paramNames) {
		return
	}
	b.pending.paramNames[b.pending.curParam] = name
	b.pending.paramDescs[b.pending.curParam] = desc
	b.pending.curParam++
}

// ReturnDesc records the name/description of the next undocumented return
// value. A no-op once every return value has been documented.
func (b *Builder) ReturnDesc(name, desc string) {
	if b.pending == nil || b.pending.curReturn >= len(b.pending.returnNames) {
		return
	}
	b.pending.returnNames[b.pending.curReturn] = name
	b.pending.returnDescs[b.pending.curReturn] = desc
	b.pending.curReturn++
}

// RequestAccessFilter installs filter on the method currently being
// defined. Passing nil clears any previously set filter.
func (b *Builder) RequestAccessFilter(filter AccessFilter) {
	if b.pending == nil {
		return
	}
	b.pending.method.filter = filter
}

// Flush pads any undocumented params/returns with placeholder strings and
// commits the pending method's documentation. Safe to call with no
// pending method (a no-op). Callers must call Flush (directly, or via
// Close) after the last DefineMethod to commit its documentation.
func (b *Builder) Flush() {
	if b.pending == nil {
		return
	}
	p := b.pending
	for ; p.curParam < len(p.paramNames); p.curParam++ {
		p.paramNames[p.curParam] = placeholderName
		p.paramDescs[p.curParam] = placeholderDesc
	}
	for ; p.curReturn < len(p.returnNames); p.curReturn++ {
		p.returnNames[p.curReturn] = placeholderName
		p.returnDescs[p.curReturn] = placeholderDesc
	}
	p.method.doc.ParamNames = p.paramNames
	p.method.doc.ParamDescs = p.paramDescs
	p.method.doc.ReturnNames = p.returnNames
	p.method.doc.ReturnDescs = p.returnDescs
	b.pending = nil
}

// Close flushes the last pending method. Intended to be called via
// defer at the end of a method-registration pass.
func (b *Builder) Close() {
	b.Flush()
}
