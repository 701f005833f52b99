package memory

// copyAlignment is the granularity of device copies that only move whole
// words, such as WebGPU buffer copies: offsets and sizes must be multiples of
// it.
const copyAlignment = 4

func alignUp(n int) int {
	return (n + copyAlignment - 1) &^ (copyAlignment - 1)
}

func alignDown(n int) int {
	return n &^ (copyAlignment - 1)
}

func wordAligned(offset, size int) bool {
	return offset%copyAlignment == 0 && size%copyAlignment == 0
}

// wordIO is device memory that can only be copied in whole words. The
// underlying allocation must extend to a word boundary past its last byte.
type wordIO interface {
	readWords(offset int, dst []byte) error
	writeWords(offset int, src []byte) error
}

// readSpan reads the words covering [offset, offset+size) and returns them
// with the position of offset inside.
func readSpan(w wordIO, offset, size int) ([]byte, int, error) {
	start := alignDown(offset)
	words := make([]byte, alignUp(offset+size)-start)
	if err := w.readWords(start, words); err != nil {
		return nil, 0, err
	}
	return words, offset - start, nil
}

// readBytes reads len(dst) bytes at any offset from w.
func readBytes(w wordIO, offset int, dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if wordAligned(offset, len(dst)) {
		return w.readWords(offset, dst)
	}
	words, at, err := readSpan(w, offset, len(dst))
	if err != nil {
		return err
	}
	copy(dst, words[at:])
	return nil
}

// writeBytes writes src at any offset into w. Unaligned ends are merged with
// the current contents of their words, which are written back unchanged.
func writeBytes(w wordIO, offset int, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	if wordAligned(offset, len(src)) {
		return w.writeWords(offset, src)
	}
	words, at, err := readSpan(w, offset, len(src))
	if err != nil {
		return err
	}
	copy(words[at:], src)
	return w.writeWords(offset-at, words)
}
