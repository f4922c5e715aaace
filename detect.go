package gzinga

// IsValidContainer returns true if src starts with a header written by this
// package. Only the first header is inspected, so this is a cheap way to
// classify arbitrary files; it does not prove the rest of the stream is
// intact. The source is not closed and its position is left unchanged.
//
// An ordinary gzip file is not a valid container: its header carries a file
// name or no comment at all, and a modification time.
func IsValidContainer(src Source) bool {
	_, err := readPattern(src)
	return err == nil
}
