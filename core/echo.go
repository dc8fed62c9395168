package core

import "errors"

// EchoPolicy bounds the echo retry loop.
//
// MaxAttempts counts consecutive write attempts that made no progress.
// Zero retries forever; a host that never drains stalls the loop here.
type EchoPolicy struct {
	MaxAttempts uint32
}

// WriteAll writes data to t in order, retrying the unwritten remainder
// after short or zero-length writes and write errors. It returns the number
// of bytes written, and ErrEchoStalled if the policy bound was reached.
func WriteAll(t Transport, data []byte, policy EchoPolicy) (int, error) {
	written := 0
	var stalled uint32
	var lastErr error
	for written < len(data) {
		n, err := t.Write(data[written:])
		if n > 0 {
			if n > len(data)-written {
				n = len(data) - written
			}
			written += n
			stalled = 0
			continue
		}
		if err != nil {
			lastErr = err
		}

		// No progress - try again
		stalled++
		if policy.MaxAttempts != 0 && stalled >= policy.MaxAttempts {
			if lastErr != nil {
				return written, errors.Join(ErrEchoStalled, lastErr)
			}
			return written, ErrEchoStalled
		}
	}
	return written, nil
}
