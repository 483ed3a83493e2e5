// Package annotated registers typed Go handlers as HTTP methods and
// describes them for the documentation service.
//
// A handler is a func(context.Context, Req) (Resp, error). Members of Req
// are bound from the request by struct tags:
//
//	type GetUserRequest struct {
//	    ID      int64   `path:"id" doc:"user id"`
//	    Fields  []string `query:"fields"`
//	    Trace   *string `header:"x-trace-id"`
//	    Limit   int     `param:"limit" default:"10"`
//	    Payload User    `body:"payload"`
//	}
//
// "param" binds a path parameter when the route declares one with that
// name and a query parameter otherwise. "bean" groups a nested struct whose
// own tagged members are bound the same way. Pointer members and members
// with a "default" tag are optional.
//
// Handlers may return a *Future to complete asynchronously.
package annotated
