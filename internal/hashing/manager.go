package hashing

import "fmt"

// Manager hashes with a default driver and verifies with whichever driver
// produced a stored hash, so switching the default does not lock anyone out.
type Manager struct {
	drivers map[DriverName]Hasher
	def     DriverName
}

// NewManager registers hashers and selects def as the driver for new hashes.
func NewManager(def DriverName, hashers ...Hasher) (*Manager, error) {
	m := &Manager{drivers: make(map[DriverName]Hasher, len(hashers)), def: def}
	for _, h := range hashers {
		m.drivers[h.Driver()] = h
	}
	if _, ok := m.drivers[def]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, def)
	}
	return m, nil
}

// NewDefaultManager builds a manager with bcrypt (at bcryptCost) and argon2id
// registered and def selected.
func NewDefaultManager(def DriverName, bcryptCost int) (*Manager, error) {
	b, err := NewBcryptHasher(bcryptCost)
	if err != nil {
		return nil, err
	}
	a, err := NewArgon2idHasher(DefaultArgon2Options())
	if err != nil {
		return nil, err
	}
	return NewManager(def, b, a)
}

func (m *Manager) Make(password string) (string, error) {
	return m.drivers[m.def].Make(password)
}

func (m *Manager) Check(password, hash string) (bool, error) {
	name, ok := DetectDriver(hash)
	if !ok {
		return false, ErrInvalidHash
	}
	h, ok := m.drivers[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
	}
	return h.Check(password, hash)
}

func (m *Manager) Driver() DriverName { return m.def }
