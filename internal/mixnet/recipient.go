package mixnet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidRecipient is returned when text is not a mixnet address.
var ErrInvalidRecipient = errors.New("invalid recipient")

// keySize is the length in bytes of every key in a recipient address.
const keySize = 32

// Recipient is a parsed mixnet address: <identity>.<encryption>@<gateway>.
type Recipient struct {
	Identity   string
	Encryption string
	Gateway    string
}

// String renders the address in its canonical text form.
func (r Recipient) String() string {
	return r.Identity + "." + r.Encryption + "@" + r.Gateway
}

// ParseRecipient validates and splits a textual mixnet address.
func ParseRecipient(s string) (Recipient, error) {
	s = strings.TrimSpace(s)
	keys, gateway, ok := strings.Cut(s, "@")
	if !ok {
		return Recipient{}, fmt.Errorf("%w: missing gateway in %q", ErrInvalidRecipient, s)
	}
	identity, encryption, ok := strings.Cut(keys, ".")
	if !ok {
		return Recipient{}, fmt.Errorf("%w: missing encryption key in %q", ErrInvalidRecipient, s)
	}

	r := Recipient{Identity: identity, Encryption: encryption, Gateway: gateway}
	for _, part := range []struct {
		name, value string
	}{
		{"identity key", r.Identity},
		{"encryption key", r.Encryption},
		{"gateway key", r.Gateway},
	} {
		if err := checkKey(part.value); err != nil {
			return Recipient{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecipient, part.name, err)
		}
	}
	return r, nil
}

func checkKey(s string) error {
	if s == "" {
		return errors.New("empty")
	}
	b, err := base58.Decode(s)
	if err != nil {
		return err
	}
	if len(b) != keySize {
		return fmt.Errorf("decodes to %d bytes, want %d", len(b), keySize)
	}
	return nil
}
