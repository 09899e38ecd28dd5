package hashing

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Options configures an Argon2idHasher. The values are encoded into
// every hash, so changing them never invalidates stored hashes.
type Argon2Options struct {
	Memory  uint32 // KiB
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Options returns m=64MiB, t=3, p=2 with a 32 byte key.
func DefaultArgon2Options() Argon2Options {
	return Argon2Options{
		Memory:  64 * 1024,
		Time:    3,
		Threads: 2,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// Argon2idHasher hashes passwords with argon2id and encodes them in PHC form:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
type Argon2idHasher struct {
	opts Argon2Options
}

func NewArgon2idHasher(opts Argon2Options) (*Argon2idHasher, error) {
	switch {
	case opts.Time < 1:
		return nil, fmt.Errorf("%w: argon2 time must be at least 1", ErrInvalidOption)
	case opts.Threads < 1:
		return nil, fmt.Errorf("%w: argon2 threads must be at least 1", ErrInvalidOption)
	case opts.Memory < 8*uint32(opts.Threads):
		return nil, fmt.Errorf("%w: argon2 memory must be at least 8 KiB per thread", ErrInvalidOption)
	case opts.KeyLen < 4:
		return nil, fmt.Errorf("%w: argon2 key length must be at least 4", ErrInvalidOption)
	case opts.SaltLen < 8:
		return nil, fmt.Errorf("%w: argon2 salt length must be at least 8", ErrInvalidOption)
	}
	return &Argon2idHasher{opts: opts}, nil
}

func (h *Argon2idHasher) Make(password string) (string, error) {
	salt := make([]byte, h.opts.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("argon2id: generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.opts.Time, h.opts.Memory, h.opts.Threads, h.opts.KeyLen)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.opts.Memory, h.opts.Time, h.opts.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

func (h *Argon2idHasher) Check(password, hash string) (bool, error) {
	p, err := decodeArgon2id(hash)
	if err != nil {
		return false, err
	}
	key := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(key, p.key) == 1, nil
}

func (h *Argon2idHasher) Driver() DriverName { return DriverArgon2id }

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func decodeArgon2id(hash string) (*argon2Params, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != string(DriverArgon2id) {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported argon2 version %d", ErrInvalidHash, version)
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	if len(p.key) == 0 {
		return nil, ErrInvalidHash
	}
	return p, nil
}
