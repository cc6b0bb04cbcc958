// Package proxy contains the reverse-proxy drivers.
//
// A driver owns the filesystem layout of one web server's vhost configs
// (available/enabled directories, symlink activation) and knows how to
// validate and reload that server. Drivers never decide what to write; the
// CLI renders config through the template package and hands the result to
// Add. The write, enable, test, reload sequence with rollback on a failed
// test lives in the CLI layer so all mutating commands share it.
package proxy
