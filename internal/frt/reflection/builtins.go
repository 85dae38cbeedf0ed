package reflection

import (
	"github.com/marmos91/frtrpc/internal/frt/frterr"
	"github.com/marmos91/frtrpc/internal/frt/rpcrequest"
)

// Built-in introspection method names, installed by the Supervisor on
// every instance.
const (
	MethodPing           = "frt.rpc.ping"
	MethodEcho           = "frt.rpc.echo"
	MethodGetMethodList  = "frt.rpc.getMethodList"
	MethodGetMethodInfo  = "frt.rpc.getMethodInfo"
)

// InstallBuiltins registers the four frt.rpc.* introspection methods
// against manager via builder. manager is captured by the handlers so
// getMethodList/getMethodInfo can see every method registered on it,
// including ones defined after InstallBuiltins runs.
func InstallBuiltins(builder *Builder, manager *Manager) {
	builder.DefineMethod(MethodPing, "", "", func(req *rpcrequest.Request) {})
	builder.MethodDesc("Ping the server.")

	builder.DefineMethod(MethodEcho, "*", "*", func(req *rpcrequest.Request) {
		req.Params().CopyAll(req.Return())
	})
	builder.MethodDesc("Echo parameters back as return values.")
	builder.ParamDesc("arg", "argument values")
	builder.ReturnDesc("ret", "copy of argument values")

	builder.DefineMethod(MethodGetMethodList, "", "SSS", func(req *rpcrequest.Request) {
		manager.DumpMethodList(req.Return())
	})
	builder.MethodDesc("Get a list of method names, parameter specs, and return specs.")
	builder.ReturnDesc("names", "method names")
	builder.ReturnDesc("arguments", "method parameter specs")
	builder.ReturnDesc("returns", "method return specs")

	builder.DefineMethod(MethodGetMethodInfo, "s", "sssSSSS", func(req *rpcrequest.Request) {
		getMethodInfo(manager, req)
	})
	builder.MethodDesc("Get meta-information about a single method.")
	builder.ParamDesc("methodName", "the method name")
	builder.ReturnDesc("desc", "method description")
	builder.ReturnDesc("argString", "parameter spec")
	builder.ReturnDesc("retString", "return spec")
	builder.ReturnDesc("argNames", "parameter names")
	builder.ReturnDesc("argDesc", "parameter descriptions")
	builder.ReturnDesc("retNames", "return value names")
	builder.ReturnDesc("retDesc", "return value descriptions")

	builder.Close()
}

func getMethodInfo(manager *Manager, req *rpcrequest.Request) {
	name := req.Params().String(0)
	method := manager.LookupMethod(name)
	if method == nil {
		req.SetError(uint32(frterr.NoSuchMethod), "unknown method: "+name)
		return
	}

	doc := method.Doc()
	ret := req.Return()
	ret.AddString(doc.Description)
	ret.AddString(method.ParamSpec())
	ret.AddString(method.ReturnSpec())
	ret.AddStringArray(doc.ParamNames)
	ret.AddStringArray(doc.ParamDescs)
	ret.AddStringArray(doc.ReturnNames)
	ret.AddStringArray(doc.ReturnDescs)
}
