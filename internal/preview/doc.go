// Package preview serves a rendered cell document over HTTP.
//
// The server renders the document on every change and keeps the last
// successful tree. Browsers connect to /_cells/reload over WebSocket and
// are told to reload only when the new tree differs from the old one.
// Clicks on cells with bound events are posted to
// /_cells/event/{cellID}/{event} and delivered through the shared
// cell.Dispatcher.
//
// # Usage
//
//	srv, err := preview.NewServer(preview.Options{
//	    Config:   cfg,
//	    Location: "ui/main.json",
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
package preview
