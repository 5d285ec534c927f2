// Package httpclient provides the HTTP transport for the watch client:
// a small configurable client with authentication, structured error
// classification, and streaming support.
//
// The sse subpackage parses text/event-stream responses into discrete
// events.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://aviso-server.example.int",
//	    Timeout: 30 * time.Second,
//	})
//
//	resp, err := client.DoStream(ctx, httpclient.Request{
//	    Method:  http.MethodPost,
//	    Path:    "/api/v1/watch",
//	    Headers: map[string]string{"Accept": "text/event-stream"},
//	    Body:    subscription,
//	})
package httpclient
