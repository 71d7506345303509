// Package cli provides the interactive imgdrop command-line client.
//
// It wires configuration, object storage, the catalog database, local
// settings and both transports into an App, then runs a REPL where the user
// queues image files, starts uploads, follows their progress and copies the
// resulting URLs as a list or a Markdown table.
//
// Typical session:
//
//	imgdrop (managed)> add ~/shots/*.png
//	imgdrop (managed)> start
//	imgdrop (managed)> wait
//	imgdrop (managed)> copy md
//
// In managed mode a project can be selected first ("project new", "project
// use") and earlier uploads browsed with "explorer".
package cli
