// Package history records bridge cycle outcomes.
//
// Every poll cycle produces one Event: the reading that was fetched, what
// was decided, and where the message went. History is separate from
// operational logging (slog); it is a machine-readable trace that the
// `dexosc history` commands can view, export and summarize.
//
// # Basic Usage
//
//	// Console only
//	cfg.History = history.NewSlogAdapter(slog.Default())
//
//	// File plus console
//	fl, _ := history.NewFileLogger("bridge.dlog")
//	cfg.History = history.NewMultiLogger(history.NewSlogAdapter(logger), fl)
//
// # File Format
//
// History files are a stream of CBOR-encoded events appended one after the
// other. Files are created with mode 0600 because they contain health data.
package history
