package service

import (
	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/internal/utils"
)

type Services struct {
	AuthService     AuthService
	DocumentService DocumentService
}

// NewServices wires the services of one session. keys must not be shared
// between sessions.
func NewServices(storages *store.Storages, keyChain crypto.KeyChainService, keys KeyHolder, logger *logger.Logger) *Services {
	documents := NewDocumentService(storages.DocumentRepository, keyChain, keys, utils.NewDocIDGenerator(), logger)

	return &Services{
		AuthService:     NewAuthService(storages.EnrollmentRepository, storages.DocumentRepository, keyChain, keys, logger),
		DocumentService: NewDocumentValidationService().Wrap(documents),
	}
}
