// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	documentsTable   = "documents"
	enrollmentsTable = "enrollments"
)

var (
	documentColumns = []string{
		"user_id",
		"doc_id",
		"version",
		"ciphertext",
		"iv",
		"wrapped_dek",
		"wrapped_dek_iv",
		"created_at",
		"updated_at",
	}

	documentInfoColumns = []string{
		"doc_id",
		"version",
		"length(ciphertext)",
		"created_at",
		"updated_at",
	}

	enrollmentColumns = []string{
		"user_id",
		"kdf_algorithm",
		"kdf_iterations",
		"kdf_memory_kib",
		"kdf_threads",
		"salt",
		"verifier_hash",
		"recovery_artifact",
		"recovery_iv",
		"created_at",
		"updated_at",
	}
)
