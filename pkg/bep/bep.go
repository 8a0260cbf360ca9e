// Package bep models the subset of the Syncthing Block Exchange Protocol v1
// message shapes this engine emits and consumes. It does not implement the
// protobuf wire encoding or the TLS transport; those live below the
// MessageChannel collaborator interface this package's types flow through.
package bep

import "github.com/blockpeer/syncengine/pkg/version"

// FileType distinguishes a FileInfo's kind.
type FileType int

const (
	FileTypeFile FileType = iota
	FileTypeDirectory
)

// ResponseCode mirrors the BEP response status enum. This engine only ever
// produces NoError; other codes are modeled for completeness of the wire
// contract a remote might send back on an unrelated exchange.
type ResponseCode int

const (
	NoError ResponseCode = iota
	ErrorGeneric
	ErrorNoSuchFile
	ErrorInvalid
)

// BlockInfo is the wire representation of one file block.
type BlockInfo struct {
	Offset uint64
	Size   uint32
	Hash   []byte
}

// Vector is the wire representation of a version vector.
type Vector struct {
	Counters []version.Counter
}

// FileInfo describes one file, directory, or deletion record, as carried in
// an IndexUpdate.
type FileInfo struct {
	Name          string
	Type          FileType
	Size          uint64
	ModifiedS     int64
	ModifiedNS    int32
	Deleted       bool
	NoPermissions bool
	Version       Vector
	Sequence      uint64
	Blocks        []BlockInfo
}

// IndexUpdate announces file changes within one folder.
type IndexUpdate struct {
	Folder string
	Files  []FileInfo
}

// Request asks the peer holding a file for one block of it.
type Request struct {
	ID     int32
	Folder string
	Name   string
	Offset int64
	Size   int32
	Hash   []byte
}

// Response answers a Request.
type Response struct {
	ID   int32
	Code ResponseCode
	Data []byte
}
