package security

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const minKeyBits = 128

var (
	// ErrInvalidGroup is returned when the configured modulus/generator pair is unusable.
	ErrInvalidGroup = errors.New("invalid diffie-hellman group")
	// ErrInvalidPublicValue is returned when the client's public value is out of range.
	ErrInvalidPublicValue = errors.New("invalid client public value")
)

// Exchanger performs the server half of a Diffie-Hellman exchange over the
// configured (P, g) group. A fresh ephemeral secret is drawn per handshake.
type Exchanger struct {
	p *big.Int
	g *big.Int
}

// NewExchanger validates the group parameters supplied by configuration.
func NewExchanger(prime, generator int64) (*Exchanger, error) {
	if prime < 3 || generator < 2 || generator >= prime {
		return nil, ErrInvalidGroup
	}
	return &Exchanger{p: big.NewInt(prime), g: big.NewInt(generator)}, nil
}

// Exchange takes the client's public value C and returns the server's public
// value S together with the derived session key bytes.
func (e *Exchanger) Exchange(clientPub *big.Int) (*big.Int, []byte, error) {
	one := big.NewInt(1)
	if clientPub == nil || clientPub.Cmp(one) < 0 || clientPub.Cmp(e.p) >= 0 {
		return nil, nil, ErrInvalidPublicValue
	}

	// secret in [1, p-1)
	bound := new(big.Int).Sub(e.p, one)
	secret, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, nil, fmt.Errorf("generate ephemeral secret: %w", err)
	}
	secret.Add(secret, one)

	serverPub := new(big.Int).Exp(e.g, secret, e.p)
	shared := new(big.Int).Exp(clientPub, secret, e.p)

	return serverPub, SessionKey(shared), nil
}

// SessionKey converts the shared value K to its bit-string form, left-zero-
// padded to at least 128 bits, and returns the bytes of that string. The
// symmetric cipher consumes these bytes directly as its key material.
func SessionKey(shared *big.Int) []byte {
	bits := shared.Text(2)
	if pad := minKeyBits/8 - len(bits); pad > 0 {
		padded := make([]byte, minKeyBits/8)
		for i := 0; i < pad; i++ {
			padded[i] = '0'
		}
		copy(padded[pad:], bits)
		return padded
	}
	return []byte(bits)
}
