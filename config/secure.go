package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/easyfin/easyfin/db"
)

// SecureStore stores configuration blobs encrypted at rest.
type SecureStore interface {
	// Latest returns the decrypted content of the newest entry for scope.
	Latest(scope string) ([]byte, error)

	// Save encrypts data and stores it as the newest entry for scope.
	Save(scope string, data []byte, format string, description string) error
}

type secureStoreAge struct {
	dbCfg      db.DbConfig
	identities []age.Identity
	recipient  age.Recipient
}

// NewSecureStoreAge reads an age X25519 identity file. The identity decrypts
// and its recipient encrypts.
func NewSecureStoreAge(dbCfg db.DbConfig, ageKeyPath string) (SecureStore, error) {
	keyContent, err := os.ReadFile(ageKeyPath)
	if err != nil {
		return nil, fmt.Errorf("securestore: failed to read age key file '%s': %w", ageKeyPath, err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyContent))
	for i := range keyContent {
		keyContent[i] = 0
	}
	if err != nil {
		return nil, fmt.Errorf("securestore: failed to parse age identities from key file '%s': %w", ageKeyPath, err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("securestore: no age identities found in key file '%s'", ageKeyPath)
	}

	id, ok := identities[0].(*age.X25519Identity)
	if !ok {
		return nil, fmt.Errorf("securestore: unsupported age identity type '%T', must be X25519", identities[0])
	}

	return &secureStoreAge{
		dbCfg:      dbCfg,
		identities: identities,
		recipient:  id.Recipient(),
	}, nil
}

func (s *secureStoreAge) Latest(scope string) ([]byte, error) {
	encrypted, err := s.dbCfg.LatestConfig(scope)
	if err != nil {
		return nil, fmt.Errorf("securestore: failed to get latest config for scope '%s': %w", scope, err)
	}
	if len(encrypted) == 0 {
		return nil, fmt.Errorf("securestore: no configuration found for scope '%s'", scope)
	}

	r, err := age.Decrypt(bytes.NewReader(encrypted), s.identities...)
	if err != nil {
		return nil, fmt.Errorf("securestore: failed to decrypt config for scope '%s': %w", scope, err)
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("securestore: failed to read decrypted config for scope '%s': %w", scope, err)
	}
	return plain, nil
}

func (s *secureStoreAge) Save(scope string, data []byte, format string, description string) error {
	var out bytes.Buffer
	w, err := age.Encrypt(&out, s.recipient)
	if err != nil {
		return fmt.Errorf("securestore: failed to create encryption writer for scope '%s': %w", scope, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("securestore: failed to encrypt config for scope '%s': %w", scope, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("securestore: failed to finish encryption for scope '%s': %w", scope, err)
	}

	if err := s.dbCfg.InsertConfig(scope, out.Bytes(), format, description); err != nil {
		return fmt.Errorf("securestore: failed to insert config for scope '%s': %w", scope, err)
	}
	return nil
}
