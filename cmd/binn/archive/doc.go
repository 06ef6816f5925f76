// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive implements the binn commands that store, digest, and
// encrypt whole value streams: pack, unpack, hash, seal, open, and
// keygen.
//
// pack and unpack move streams in and out of the compressed archive
// format of lib/archive. hash prints BLAKE3 digests of files or of each
// decoded value. seal and open wrap a stream in age encryption; private
// keys are read into locked memory and never accepted on the command
// line. Defaults for compression and for keys come from the archive and
// seal sections of the configuration.
package archive
