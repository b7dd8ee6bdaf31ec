package validation

// Message is one entry of an error table.
type Message struct {
	Key  string `json:"key" yaml:"key" mapstructure:"key"`
	Text string `json:"message" yaml:"message" mapstructure:"message"`
}

// Table is an ordered list of error messages keyed by validator name.
type Table []Message

// Resolve returns the first entry whose key is failing.
func (t Table) Resolve(failing map[string]bool) (Message, bool) {
	for _, m := range t {
		if failing[m.Key] {
			return m, true
		}
	}
	return Message{}, false
}

// Lookup returns the message registered for key.
func (t Table) Lookup(key string) (string, bool) {
	for _, m := range t {
		if m.Key == key {
			return m.Text, true
		}
	}
	return "", false
}
