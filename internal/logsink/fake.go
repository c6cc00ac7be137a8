package logsink

// Fake records logged messages for test assertions.
type Fake struct {
	// Messages contains every message that was logged.
	Messages []string

	// Calls counts Log invocations, including failed ones.
	Calls int

	// Err, if set, will be returned by Log.
	Err error
}

// NewFake creates a Fake for testing.
func NewFake() *Fake {
	return &Fake{}
}

// Log records the message.
func (f *Fake) Log(message string) error {
	f.Calls++
	if f.Err != nil {
		return f.Err
	}
	f.Messages = append(f.Messages, message)
	return nil
}

// Reset clears recorded messages.
func (f *Fake) Reset() {
	f.Messages = nil
	f.Calls = 0
	f.Err = nil
}
