package domain

import (
	"strings"
	"time"
)

// DateLayout é o formato de data esperado pelo endpoint (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Date serializa como "yyyy-MM-dd". Zero vira null.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Document é o documento de introdução de mercadorias aceito pelo endpoint.
type Document struct {
	Description    *Description `json:"description,omitempty"`
	DocID          string       `json:"doc_id"`
	DocStatus      string       `json:"doc_status"`
	DocType        string       `json:"doc_type"`
	ImportRequest  bool         `json:"importRequest"`
	OwnerINN       string       `json:"owner_inn"`
	ParticipantINN string       `json:"participant_inn"`
	ProducerINN    string       `json:"producer_inn"`
	ProductionDate Date         `json:"production_date"`
	ProductionType string       `json:"production_type"`
	Products       []Product    `json:"products"`
	RegDate        Date         `json:"reg_date"`
	RegNumber      string       `json:"reg_number"`
}

type Description struct {
	ParticipantINN string `json:"participantInn"`
}

type Product struct {
	CertificateDocument       string `json:"certificate_document"`
	CertificateDocumentDate   Date   `json:"certificate_document_date"`
	CertificateDocumentNumber string `json:"certificate_document_number"`
	OwnerINN                  string `json:"owner_inn"`
	ProducerINN               string `json:"producer_inn"`
	ProductionDate            Date   `json:"production_date"`
	TNVEDCode                 string `json:"tnved_code"`
	UITCode                   string `json:"uit_code"`
	UITUCode                  string `json:"uitu_code"`
}
