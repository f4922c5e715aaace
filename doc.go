// GZinga - a pure-Go package implementing random access within gzip files
//
// Abstract
//
// This library creates and reads a special kind of gzip files, called
// "indexed containers", that carry their own index. A container is a
// multi-member gzip file closed by one last header with no data after it:
// gzip decoders that tolerate trailing bytes decompress it to the original
// data, and NewStreamReader reads it from any io.Reader. On top of that,
// every member header stores, in its comment
// field, a table mapping application keys to the byte offset of the member
// that starts at that key. The reader loads that table from the end of the
// file and jumps straight to the member holding a key, without decompressing
// anything before it.
//
//
// How to use
//
// Write the data with a Writer and call Checkpoint(key) at the points you
// will want to jump back to; the key is any int64 that makes sense to your
// application (a line number, a timestamp, a record id). Close the Writer
// when done.
//
// Open the file with NewReader and call Seek(key): the following Read calls
// return the data written after Checkpoint(key), up to the end of the file.
// Index() lists every key available. Seeking to a key that does not exist
// rewinds to the beginning.
//
// If you only need to seek at uncompressed offsets, use NewBlockWriter or
// NewRsyncableWriter, which checkpoint by themselves using the uncompressed
// offset as key, and then Reader.SeekOffset. Existing gzip files can be
// turned into containers with Convert.
//
//
// Splitting
//
// Since every member starts with the same 10 header bytes, a container can
// be cut at arbitrary offsets and realigned on member boundaries with
// LocateNextBoundary. Splits and ReadSplits use it to decompress a large
// container in parallel, one independent Source per range.
//
//
// Command line tool
//
// This package contains a command line tool called "gzinga", mostly
// compatible with "gzip", that also lists the index of a container and
// extracts data starting at a key:
//
//      $ seq 1000000 | gzinga -c --every 10000 > numbers.gz
//      $ gzinga -l numbers.gz
//      $ gzinga -x 50 -c numbers.gz | head
//
//
// Description of the format
//
// A container is a sequence of records:
//
//     [header][comment "k:v;k:v;..."][0x00]([deflate data][crc32][isize])
//
// The header is always 1f 8b 08 10 00 00 00 00 00 <os>: the comment flag is
// the only flag set and the modification time is zero, so the first 10
// bytes are the same in every member and can be searched for. The comment
// holds the complete index as of the moment the header was written, which
// means the index grows quadratically with the number of checkpoints. The
// last record is a header with no member after it, carrying the final index:
// reading the end of the file is enough to recover every key.
//
// The offset recorded for a key is the position of the header written right
// after Checkpoint(key), that is the beginning of the member holding the
// data that follows.
package gzinga
