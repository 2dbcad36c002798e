package gpio

import "errors"

// FakeReader is a test double that returns scripted pin levels.
type FakeReader struct {
	// Samples contains scripted levels to return (true = HIGH).
	// Each call to Read() consumes the next sample.
	Samples []bool

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...bool) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted level.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	level := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return level, nil
}

// Set replaces the script with a single level held until the next Set.
func (f *FakeReader) Set(level bool) {
	f.Samples = []bool{level}
	f.index = 0
}

// Press drives the pin LOW.
func (f *FakeReader) Press() { f.Set(false) }

// Release drives the pin HIGH.
func (f *FakeReader) Release() { f.Set(true) }

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
