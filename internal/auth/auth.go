package auth

import "crypto/subtle"

// CredentialVerifier checks a username/password pair. The dashboard ships
// with a config-backed static verifier; a real secret store can implement
// the same interface.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

// StaticVerifier compares against a single configured credential pair.
type StaticVerifier struct {
	username string
	password string
}

func NewStaticVerifier(username, password string) *StaticVerifier {
	return &StaticVerifier{username: username, password: password}
}

// Verify compares in constant time.
func (v *StaticVerifier) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.password)) == 1
	return userOK && passOK
}
