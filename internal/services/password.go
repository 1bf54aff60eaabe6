package services

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordPolicy decides how passwords are stored and compared.
type PasswordPolicy interface {
	Hash(plain string) (string, error)
	Matches(stored, plain string) bool
}

// PlainPasswords stores passwords verbatim and compares them directly.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlainPasswords) Matches(stored, plain string) bool {
	return stored == plain
}

// BcryptPasswords stores bcrypt hashes.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(plain string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptPasswords) Matches(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}

// NewPasswordPolicy returns the bcrypt policy when hashed is set.
func NewPasswordPolicy(hashed bool) PasswordPolicy {
	if hashed {
		return BcryptPasswords{}
	}
	return PlainPasswords{}
}
