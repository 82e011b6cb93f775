// Package watcher regenerates the output page whenever the markdown source
// changes.
//
// The source is polled on a fixed interval. A poll that finds a newer
// modification time hashes the file and only renders when the digest differs
// from the last rendered one, so editors that touch a file without changing it
// do not trigger work. Optional change hints (see repository.StartNotifier)
// shorten the delay between a save and the next check without changing those
// rules.
package watcher
