package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleIssuer    Role = "ISSUER"
	RoleRecipient Role = "RECIPIENT"
)

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleIssuer:
		return RoleIssuer, nil
	case RoleRecipient:
		return RoleRecipient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

func (s DocumentStatus) Terminal() bool {
	return s == StatusReady || s == StatusFailed
}

// Document is one uploaded settlement file. Immutable after ingestion except
// for status transitions and the header block filled in during processing.
type Document struct {
	ID          string         `json:"id"`
	BatchID     string         `json:"batch_id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Role        Role           `json:"role"`
	Header      Header         `json:"header"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Header is the identification block of a settlement document: the authority
// voucher code, letter, point of sale and sequence number, plus the issue and
// operation dates as printed.
type Header struct {
	SettlementCode int    `json:"settlement_code,omitempty"`
	VoucherType    string `json:"voucher_type,omitempty"`
	Letter         string `json:"letter,omitempty"`
	PointOfSale    string `json:"point_of_sale,omitempty"`
	Number         string `json:"number,omitempty"`
	IssueDate      string `json:"issue_date,omitempty"`
	OperationDate  string `json:"operation_date,omitempty"`
}

// Batch groups the documents whose reports are rolled up together. Reports for
// a batch are withheld until every document in it reached a terminal status.
type Batch struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// RawLine is one line of extracted text with its position in the source
// document. Consumed by the tokenizer and discarded after classification.
type RawLine struct {
	Page  int
	Index int
	Text  string
}
