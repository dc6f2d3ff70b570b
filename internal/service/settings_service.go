package service

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/apperrors"
	"github.com/ndewijer/Fundamentals-Simulator-Backend/internal/repository"
)

// feedTokenKey is the system_setting key holding the encrypted feed token.
const feedTokenKey = "feed_token"

// SettingsService stores and retrieves system settings. Secrets are encrypted
// at rest with the configured fernet key.
type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	key          *fernet.Key
}

// NewSettingsService creates a new SettingsService. fernetKey may be empty,
// in which case secret storage is unavailable but plain settings still work.
func NewSettingsService(settingsRepo *repository.SettingsRepository, fernetKey string) (*SettingsService, error) {
	s := &SettingsService{settingsRepo: settingsRepo}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode fernet key: %w", err)
		}
		s.key = key
	}

	return s, nil
}

// SetFeedToken encrypts and stores the statement feed authentication token.
func (s *SettingsService) SetFeedToken(token string) error {
	if s.key == nil {
		return apperrors.ErrEncryptionKeyNotConfigured
	}

	encrypted, err := fernet.EncryptAndSign([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt feed token: %w", err)
	}

	return s.settingsRepo.Set(feedTokenKey, string(encrypted))
}

// FeedToken retrieves and decrypts the stored feed token. Returns
// ErrSettingNotFound when no token has been stored.
func (s *SettingsService) FeedToken() (string, error) {
	if s.key == nil {
		return "", apperrors.ErrEncryptionKeyNotConfigured
	}

	stored, err := s.settingsRepo.Get(feedTokenKey)
	if err != nil {
		return "", err
	}

	decrypted := fernet.VerifyAndDecrypt([]byte(stored), 0, []*fernet.Key{s.key})
	if decrypted == nil {
		return "", fmt.Errorf("stored feed token failed verification")
	}
	return string(decrypted), nil
}
