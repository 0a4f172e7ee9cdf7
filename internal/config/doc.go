// Package config provides configuration parsing for the cells toolkit.
//
// Configuration lives in cells.json or cells.toml next to the documents
// being rendered. Both files share one schema; JSON wins when both exist.
//
// # Configuration File Structure
//
//	{
//	  "preview": {"host": "localhost", "port": 7070, "reload": true, "title": "Cells"},
//	  "render":  {"pretty": false, "indent": "  ", "maxDepth": 64},
//	  "metrics": {"enabled": true, "namespace": "cells", "path": "/metrics"},
//	  "tracing": {"tracerName": "cells"},
//	  "log":     {"level": "info", "format": "text"},
//	  "source":  {"region": "us-east-1"}
//	}
//
// The TOML form uses the same keys:
//
//	[preview]
//	port = 7070
//
//	[render]
//	maxDepth = 32
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.PreviewAddress())
package config
