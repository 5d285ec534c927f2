// Package watch implements a long-lived client for the Aviso notification
// feed. It subscribes to the server's watch endpoint over Server-Sent
// Events, classifies each incoming event, dispatches it to a per-kind
// handler, and reconnects with a fixed interval whenever the stream is
// lost.
//
// # Basic Usage
//
//	client, err := watch.New(watch.Config{
//	    ServerURL: "https://aviso-server.example.int",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go func() {
//	    <-interrupt
//	    client.Stop()
//	}()
//
//	err = client.Connect(ctx, watch.SubscriptionRequest{
//	    EventType: "test_polygon",
//	    FromID:    "0",
//	})
//
// Connect blocks until Stop is called (or the outer context is
// cancelled). Lost connections are re-established indefinitely; decode
// and handler failures are logged and never terminate the stream.
package watch
