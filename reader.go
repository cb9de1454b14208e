package procspawn

import (
	"bytes"
	"errors"
	"io"
	"os"
	"syscall"
)

const readChunkSize = 4096

// drain is C3: it repeatedly reads up to readChunkSize bytes from f,
// delivering each chunk to onChunk if non-nil, and appending to an
// internal buffer regardless. It tolerates EINTR by retrying, stops and
// records a ReadSyscallError on any other read failure (leaving f open —
// see the comment on that branch below for why), and on EOF closes f and
// returns the
// accumulated bytes as success.
//
// Go's os.File.Read already retries internally on EINTR before returning
// to the caller; the explicit check below exists to document and honor
// the contract from the upstream design rather than to work around a gap
// in the standard library.
func drain(f *os.File, onChunk func([]byte)) Result[[]byte] {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			data := chunk[:n]
			if onChunk != nil {
				onChunk(data)
			}
			buf.Write(data)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		if errors.Is(err, io.EOF) {
			if closeErr := closeChecked(f); closeErr != nil {
				return Failed[[]byte](closeErr)
			}
			return Ok(buf.Bytes())
		}
		// Non-EOF failure: the read FD is deliberately left open. Closing
		// it here could deliver SIGPIPE to a child still writing, per
		// §4.3's rationale.
		return Failed[[]byte](&ReadSyscallError{Errno: err})
	}
}
