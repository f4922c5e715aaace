package gzinga

import (
	"io"
)

const DefaultBlockSize = 64 * 1024

// BlockWriter segments the container at fixed uncompressed sizes. Every
// member but the last holds exactly blockSize bytes, and each checkpoint key
// is the uncompressed offset where its member begins.
type BlockWriter struct {
	*Writer
	blockSize int64
	fill      int64
}

// Create a new compressing writer that will generate an indexed container,
// segmenting the compressed stream at fixed offsets. You can use
// DefaultBlockSize as a reasonable default (64kb) that balances
// decompression speed and compression overhead; keep in mind that every
// header repeats the whole index, so tiny blocks on huge inputs cost
// quadratic space.
func NewBlockWriter(w io.Writer, blockSize int, opts ...Option) (*BlockWriter, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	zw, err := NewWriter(w, opts...)
	if err != nil {
		return nil, err
	}
	return &BlockWriter{Writer: zw, blockSize: int64(blockSize)}, nil
}

// Write splits data across members. A member is only closed once more data
// arrives, so the container never ends with an empty member.
func (bw *BlockWriter) Write(data []byte) (int, error) {
	written := 0
	for len(data) > 0 {
		if bw.fill == bw.blockSize {
			if err := bw.Checkpoint(bw.Offset()); err != nil {
				return written, err
			}
			bw.fill = 0
		}
		chunk := bw.blockSize - bw.fill
		if chunk > int64(len(data)) {
			chunk = int64(len(data))
		}
		n, err := bw.Writer.Write(data[:chunk])
		written += n
		bw.fill += int64(n)
		if err != nil {
			return written, err
		}
		data = data[n:]
	}
	return written, nil
}
