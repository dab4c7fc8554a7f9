// Package sourcetree builds synthetic source trees: fresh uniquely
// named directories under the trees dir whose entries are symlinks (or
// copies, where symlinks are unavailable) satisfying a requested file
// layout, optionally backfilled with every other entry of the
// dataset's default source directory. Tree lifetime is owned by a
// scope; construction is all-or-nothing.
package sourcetree
