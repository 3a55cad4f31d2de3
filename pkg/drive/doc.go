// Package drive is the tree and permission engine of dittodrive.
//
// A FileSystem holds one tree of entries under a root directory. Every
// entry is a *Directory, *PlainFile, *App or *Link, carries an owner and
// an owner/others permission pair, and derives its path from its
// ancestors. Children are created only through their parent's Create*
// methods, which check write on the parent and name uniqueness.
//
// Every traversal and mutation goes through Entry.Enforce. The
// FileSystem's SuperuserChecker grants full rights to the root principal.
//
// The package is synchronous and does no locking; see pkg/drive/service
// for the transaction boundary used by the CLI.
package drive
