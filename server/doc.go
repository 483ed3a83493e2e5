// Package server hosts annotated services and plain handlers behind one
// router.
//
// Routes are matched by virtual host, path mapping, and verb, in the order
// they were added. A path that matches with the wrong verb is answered
// with 405 and an Allow header; anything else unmatched gets 404.
//
// Build hands the mounted annotated services to every handler that
// implements docs.Initializer, so a DocService mounted with ServiceUnder
// documents the services next to it:
//
//	docService, _ := docs.NewDocServiceBuilder().Build()
//	srv, err := server.NewBuilder().
//	    AnnotatedService("/api", users).
//	    ServiceUnder("/docs", docService).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	return srv.Serve(ctx, ":8080")
package server
