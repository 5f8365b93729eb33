// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AADContext is the (user, document, version) triple every content
// encryption is bound to. It is rebuilt from metadata the caller already
// knows and is never stored as a secret.
type AADContext struct {
	UserID  string
	DocID   string
	Version int64
}

// Validate rejects empty identifiers, identifiers containing ':' (which
// would make two different triples serialize identically) and versions
// below 1.
func (c AADContext) Validate() error {
	if c.UserID == "" || c.DocID == "" {
		return fmt.Errorf("%w: user id and document id are required", ErrValidation)
	}
	if strings.ContainsRune(c.UserID, ':') || strings.ContainsRune(c.DocID, ':') {
		return fmt.Errorf("%w: identifiers must not contain ':'", ErrValidation)
	}
	if c.Version < 1 {
		return fmt.Errorf("%w: version must be positive, got %d", ErrValidation, c.Version)
	}
	return nil
}

// Bytes serializes the triple as "{userId}:{docId}:{version}".
func (c AADContext) Bytes() []byte {
	b := make([]byte, 0, len(c.UserID)+len(c.DocID)+22)
	b = append(b, c.UserID...)
	b = append(b, ':')
	b = append(b, c.DocID...)
	b = append(b, ':')
	return strconv.AppendInt(b, c.Version, 10)
}

// EncryptedDocument is the only durably persisted form of a document.
// Binary fields travel as standard base64 in the JSON wire form.
type EncryptedDocument struct {
	Ciphertext   []byte `json:"ciphertext"`
	IV           []byte `json:"iv"`
	WrappedDEK   []byte `json:"wrappedDEK"`
	WrappedDEKIV []byte `json:"wrappedDEKiv"`
	Version      int64  `json:"version"`

	// Context is the triple the document was sealed under. It is informative
	// only: decryption always uses the triple supplied by the caller.
	Context AADContext `json:"-"`
}

// validateShape checks field lengths of a document received from transport.
func (d EncryptedDocument) validateShape() error {
	switch {
	case len(d.Ciphertext) < TagSize:
		return fmt.Errorf("%w: ciphertext shorter than tag", ErrValidation)
	case len(d.IV) != IVSize:
		return fmt.Errorf("%w: iv must be %d bytes", ErrValidation, IVSize)
	case len(d.WrappedDEK) != WrappedDEKSize:
		return fmt.Errorf("%w: wrapped key must be %d bytes", ErrValidation, WrappedDEKSize)
	case len(d.WrappedDEKIV) != IVSize:
		return fmt.Errorf("%w: wrapped key iv must be %d bytes", ErrValidation, IVSize)
	case d.Version < 1:
		return fmt.Errorf("%w: version must be positive", ErrValidation)
	}
	return nil
}

// EncryptDocument seals content for the given context:
//  1. generate a fresh DEK;
//  2. build the AAD from (user, doc, version);
//  3. encrypt content under the DEK with that AAD;
//  4. wrap the DEK under the KEK.
func EncryptDocument(content []byte, kek *KEK, aad AADContext) (EncryptedDocument, error) {
	if err := aad.Validate(); err != nil {
		return EncryptedDocument{}, err
	}
	if !kek.Alive() {
		return EncryptedDocument{}, fmt.Errorf("%w: no usable key-encrypting key", ErrPrecondition)
	}

	dek, err := GenerateDEK()
	if err != nil {
		return EncryptedDocument{}, fmt.Errorf("generate dek: %w", err)
	}
	defer dek.Wipe()

	ciphertext, iv, err := Encrypt(content, dek, aad.Bytes())
	if err != nil {
		return EncryptedDocument{}, fmt.Errorf("encrypt content: %w", err)
	}

	wrapped, wrappedIV, err := WrapDEK(dek, kek)
	if err != nil {
		return EncryptedDocument{}, fmt.Errorf("wrap dek: %w", err)
	}

	return EncryptedDocument{
		Ciphertext:   ciphertext,
		IV:           iv,
		WrappedDEK:   wrapped,
		WrappedDEKIV: wrappedIV,
		Version:      aad.Version,
		Context:      aad,
	}, nil
}

// DecryptDocument is the inverse of [EncryptDocument]. aad must be the exact
// triple used at encryption time; a different user, document or version
// (including a newer version number presented with an older blob) fails with
// [ErrAuthentication].
func DecryptDocument(doc EncryptedDocument, kek *KEK, aad AADContext) ([]byte, error) {
	if err := aad.Validate(); err != nil {
		return nil, err
	}

	dek, err := UnwrapDEK(doc.WrappedDEK, doc.WrappedDEKIV, kek)
	if err != nil {
		return nil, err
	}
	defer dek.Wipe()

	return Decrypt(doc.Ciphertext, doc.IV, dek, aad.Bytes())
}

// RewrapDocument re-seals the document's DEK under newKEK. The content
// ciphertext is left untouched, so a password change costs one small AEAD
// operation per document.
func RewrapDocument(doc EncryptedDocument, oldKEK, newKEK *KEK) (EncryptedDocument, error) {
	dek, err := UnwrapDEK(doc.WrappedDEK, doc.WrappedDEKIV, oldKEK)
	if err != nil {
		return EncryptedDocument{}, err
	}
	defer dek.Wipe()

	wrapped, iv, err := WrapDEK(dek, newKEK)
	if err != nil {
		return EncryptedDocument{}, err
	}

	doc.WrappedDEK = wrapped
	doc.WrappedDEKIV = iv
	return doc, nil
}

// MarshalDocument encodes doc into its JSON wire form.
func MarshalDocument(doc EncryptedDocument) ([]byte, error) {
	if err := doc.validateShape(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// UnmarshalDocument decodes and shape-checks a JSON wire document.
// Malformed input yields [ErrValidation].
func UnmarshalDocument(data []byte) (EncryptedDocument, error) {
	var doc EncryptedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return EncryptedDocument{}, fmt.Errorf("%w: decode document: %v", ErrValidation, err)
	}
	if err := doc.validateShape(); err != nil {
		return EncryptedDocument{}, err
	}
	return doc, nil
}
