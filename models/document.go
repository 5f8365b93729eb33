// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// DocumentRecord is one encrypted document as persisted by the storage
// layer. Every binary column holds ciphertext or public parameters; the
// plaintext and the DEK never reach this type.
//
// (UserID, DocID) is the primary key. Version is the version the content was
// encrypted under and is part of the AEAD associated data.
type DocumentRecord struct {
	UserID       string
	DocID        string
	Version      int64
	Ciphertext   []byte
	IV           []byte
	WrappedDEK   []byte
	WrappedDEKIV []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocumentInfo is the metadata listing of a document. It is read without
// touching key material.
type DocumentInfo struct {
	DocID          string    `json:"doc_id"`
	Version        int64     `json:"version"`
	CiphertextSize int64     `json:"size"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Document is a decrypted document handed back to the caller.
type Document struct {
	DocID   string
	Version int64
	Content []byte
}
