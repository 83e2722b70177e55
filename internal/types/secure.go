package types

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive values. It overrides String() and
// MarshalJSON() to return a redacted placeholder, so database URLs and
// gateway API keys never leak through fmt functions or JSON output.
//
// Use Unmask() to retrieve the raw plaintext when it is genuinely needed,
// such as opening a connection pool or setting an Authorization header.
type SecretString string

const redactedPlaceholder = "[REDACTED]"

var redactedJSON = []byte(`"` + redactedPlaceholder + `"`)

// String returns a redacted placeholder instead of the raw value.
func (s SecretString) String() string {
	return redactedPlaceholder
}

// MarshalJSON returns the redacted placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw plaintext value of the secret.
func (s SecretString) Unmask() string {
	return string(s)
}

// IsEmpty reports whether the secret is unset.
func (s SecretString) IsEmpty() bool {
	return len(s) == 0
}
