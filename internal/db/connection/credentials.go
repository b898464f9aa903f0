package connection

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazyquery"

// ErrCredentialNotFound is returned when no password is stored for a data source
var ErrCredentialNotFound = errors.New("credential not found")

// CredentialStore keeps data source passwords in the OS keyring
type CredentialStore struct {
	service string
}

// NewCredentialStore creates a credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{service: serviceName}
}

// Save stores a password for the data source/user pair.
// Empty passwords are not stored.
func (cs *CredentialStore) Save(dataSource, user, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(cs.service, makeKey(dataSource, user), password); err != nil {
		return fmt.Errorf("failed to save password to keyring: %w", err)
	}
	return nil
}

// Get retrieves the password for the data source/user pair
func (cs *CredentialStore) Get(dataSource, user string) (string, error) {
	password, err := keyring.Get(cs.service, makeKey(dataSource, user))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// Delete removes the password for the data source/user pair
func (cs *CredentialStore) Delete(dataSource, user string) error {
	err := keyring.Delete(cs.service, makeKey(dataSource, user))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}

// makeKey creates the keyring account name: "datasource:user"
func makeKey(dataSource, user string) string {
	return dataSource + ":" + user
}
