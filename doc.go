// Package notenest is the Composition Root for NoteNest.
//
// It wires the single-tree state store (pkg/store) to a persistence adapter
// (pkg/adapters/fs by default) using functional options.
//
// NoteNest keeps notes, tasks and mind maps in one application state. Every
// change is a tagged action applied by a pure reducer; the resulting tree is
// written wholesale to one JSON blob, optionally snapshotted with git using a
// Conventional Commit message derived from the action.
//
// Usage:
//
//	st, err := notenest.Open(ctx, "./notes",
//		notenest.WithAutoInit(true),
//		notenest.WithLogger(logger),
//	)
//
//	st.Dispatch(ctx, store.AddTask{Text: "Buy milk"})
package notenest
