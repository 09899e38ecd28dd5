package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastArgon2() Argon2Options {
	return Argon2Options{Memory: 64, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}
}

func testHashers(t *testing.T) []Hasher {
	t.Helper()
	b, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	a, err := NewArgon2idHasher(fastArgon2())
	require.NoError(t, err)
	return []Hasher{b, a}
}

func TestHashers(t *testing.T) {
	for _, h := range testHashers(t) {
		t.Run(string(h.Driver()), func(t *testing.T) {
			first, err := h.Make("correct horse")
			require.NoError(t, err)
			second, err := h.Make("correct horse")
			require.NoError(t, err)

			assert.NotEqual(t, first, second, "hashes must be salted")
			assert.NotContains(t, first, "correct horse")

			ok, err := h.Check("correct horse", first)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Check("battery staple", first)
			require.NoError(t, err)
			assert.False(t, ok)

			driver, found := DetectDriver(first)
			assert.True(t, found)
			assert.Equal(t, h.Driver(), driver)
		})
	}
}

func TestCheckMalformedHash(t *testing.T) {
	for _, h := range testHashers(t) {
		t.Run(string(h.Driver()), func(t *testing.T) {
			ok, err := h.Check("password", "not-a-hash")
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrInvalidHash)
		})
	}
}

func TestNewBcryptHasherRejectsCost(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.ErrorIs(t, err, ErrInvalidOption)

	h, err := NewBcryptHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, h.cost)
}

func TestNewArgon2idHasherRejectsOptions(t *testing.T) {
	opts := fastArgon2()
	opts.SaltLen = 4
	_, err := NewArgon2idHasher(opts)
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestManagerVerifiesAcrossDrivers(t *testing.T) {
	hashers := testHashers(t)

	bcryptFirst, err := NewManager(DriverBcrypt, hashers...)
	require.NoError(t, err)
	legacy, err := bcryptFirst.Make("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(legacy, "$2a$"))

	argonFirst, err := NewManager(DriverArgon2id, hashers...)
	require.NoError(t, err)
	current, err := argonFirst.Make("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(current, "$argon2id$"))

	for _, hash := range []string{legacy, current} {
		ok, err := argonFirst.Check("secret", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestManagerUnknownDriver(t *testing.T) {
	_, err := NewManager(DriverArgon2id, testHashers(t)[0])
	assert.ErrorIs(t, err, ErrUnknownDriver)

	m, err := NewManager(DriverBcrypt, testHashers(t)...)
	require.NoError(t, err)
	_, err = m.Check("x", "$unknown$hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
