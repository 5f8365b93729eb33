package service

import (
	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/models"
)

func toEncryptedDocument(r models.DocumentRecord) crypto.EncryptedDocument {
	return crypto.EncryptedDocument{
		Ciphertext:   r.Ciphertext,
		IV:           r.IV,
		WrappedDEK:   r.WrappedDEK,
		WrappedDEKIV: r.WrappedDEKIV,
		Version:      r.Version,
		Context:      crypto.AADContext{UserID: r.UserID, DocID: r.DocID, Version: r.Version},
	}
}

func toDocumentRecord(userID, docID string, d crypto.EncryptedDocument) models.DocumentRecord {
	return models.DocumentRecord{
		UserID:       userID,
		DocID:        docID,
		Version:      d.Version,
		Ciphertext:   d.Ciphertext,
		IV:           d.IV,
		WrappedDEK:   d.WrappedDEK,
		WrappedDEKIV: d.WrappedDEKIV,
	}
}

func toDocumentInfo(r models.DocumentRecord) models.DocumentInfo {
	return models.DocumentInfo{
		DocID:          r.DocID,
		Version:        r.Version,
		CiphertextSize: int64(len(r.Ciphertext)),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
