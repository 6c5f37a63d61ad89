package consensus

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	addrBytes = 20
)

var ZeroAddr = Addr{}

// Addr is the address of an account or a contract.
type Addr [addrBytes]byte

func (a Addr) String() string {
	return fmt.Sprintf("%x", a[:])
}

func (a Addr) Hex() string {
	return fmt.Sprintf("%x", a[:])
}

// ParseAddr parses a hex encoded address, with or without the 0x
// prefix.
func ParseAddr(s string) (Addr, error) {
	var a Addr
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return a, err
	}

	if len(b) != addrBytes {
		return a, fmt.Errorf("address must be %d bytes, got %d", addrBytes, len(b))
	}

	copy(a[:], b)
	return a, nil
}

// NamedAddr derives a deterministic address from a name, used for
// system accounts and test users.
func NamedAddr(name string) Addr {
	return SHA3([]byte(name)).Addr()
}

// MarshalText implements encoding.TextMarshaler.
func (a Addr) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Addr) UnmarshalText(b []byte) error {
	parsed, err := ParseAddr(string(b))
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
