package models

import "time"

// ExtractedDocument is one uploaded file after processing. ExtractedFields is
// an untyped bag because upstream extractors do not agree on key naming; the
// merger resolves aliases and falls back to RawText patterns.
type ExtractedDocument struct {
	ID              string                 `json:"id"`
	ApplicationID   string                 `json:"application_id"`
	Type            string                 `json:"type"`
	Status          string                 `json:"status"`
	FileName        string                 `json:"file_name"`
	StoragePath     string                 `json:"storage_path,omitempty"`
	FileURL         string                 `json:"file_url,omitempty"`
	ExtractedFields map[string]interface{} `json:"extracted_fields,omitempty"`
	RawText         string                 `json:"raw_text,omitempty"`
	ErrorMessage    string                 `json:"error_message,omitempty"`
	UploadedAt      time.Time              `json:"uploaded_at"`
	ProcessedAt     *time.Time             `json:"processed_at,omitempty"`
}

// IsSponsorTyped reports whether the document belongs to the sponsor rather
// than the applicant. Sponsor documents never contribute to the applicant's
// own savings figure.
func (d *ExtractedDocument) IsSponsorTyped() bool {
	return d.Type == DocTypeSponsorBankStatement || d.Type == DocTypeSponsorAssets
}

// GeneratedDocument is a versioned generated artifact (cover letter,
// personal statement). Exactly one version per document type is current.
type GeneratedDocument struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	DocType       string    `json:"doc_type"`
	Content       string    `json:"content"`
	Version       int       `json:"version"`
	IsCurrent     bool      `json:"is_current"`
	CreatedAt     time.Time `json:"created_at"`
}
