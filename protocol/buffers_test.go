package protocol

import "testing"

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(10)

	if !fifo.IsEmpty() {
		t.Error("New FIFO should be empty")
	}

	data := []byte{1, 2, 3, 4, 5}
	written := fifo.Write(data)
	if written != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", written)
	}

	if fifo.Available() != 5 {
		t.Errorf("Expected 5 bytes available, got %d", fifo.Available())
	}

	readBuf := make([]byte, 3)
	n := fifo.Read(readBuf)
	if n != 3 {
		t.Errorf("Expected to read 3 bytes, read %d", n)
	}
	if readBuf[0] != 1 || readBuf[1] != 2 || readBuf[2] != 3 {
		t.Errorf("Read wrong data: %v", readBuf)
	}

	if fifo.Available() != 2 {
		t.Errorf("Expected 2 bytes available after read, got %d", fifo.Available())
	}
}

func TestFifoBufferWrapAround(t *testing.T) {
	fifo := NewFifoBuffer(5)

	fifo.Write([]byte{1, 2, 3, 4})
	out := make([]byte, 3)
	fifo.Read(out)

	// Writes now wrap past the end of the backing slice
	if n := fifo.Write([]byte{5, 6, 7}); n != 3 {
		t.Fatalf("Expected to write 3 bytes after wrap, wrote %d", n)
	}

	all := make([]byte, 8)
	n := fifo.Read(all)
	want := []byte{4, 5, 6, 7}
	if n != len(want) {
		t.Fatalf("Expected %d bytes, got %d", len(want), n)
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("Byte %d: expected %d, got %d", i, want[i], all[i])
		}
	}
}

func TestFifoBufferFull(t *testing.T) {
	fifo := NewFifoBuffer(4)

	if n := fifo.Write([]byte{1, 2, 3, 4, 5}); n != 3 {
		t.Errorf("Expected 3 bytes to fit in a 4-slot FIFO, wrote %d", n)
	}
	if fifo.Free() != 0 {
		t.Errorf("Expected no free space, got %d", fifo.Free())
	}

	fifo.Reset()
	if !fifo.IsEmpty() || fifo.Free() != 3 {
		t.Errorf("Reset should empty the FIFO, available=%d free=%d", fifo.Available(), fifo.Free())
	}
}
