// Package source provides byte sources and sinks for gzinga containers.
//
// File and Bytes satisfy gzinga.Source for local files and in-memory data.
// Containers kept in object stores can be read through the s3 and minio
// subpackages, which issue ranged requests so that opening a container and
// seeking to a key only transfers the tail of the object and the members
// actually read.
//
// Sink is an exclusive local file sink: a container has a single writer, and
// Sink refuses to open a file another writer still holds.
package source
