package model

// RecordType names a DNS record type.
type RecordType string

const (
	RecordA     RecordType = "A"
	RecordAAAA  RecordType = "AAAA"
	RecordMX    RecordType = "MX"
	RecordTXT   RecordType = "TXT"
	RecordNS    RecordType = "NS"
	RecordSOA   RecordType = "SOA"
	RecordCNAME RecordType = "CNAME"
	RecordSRV   RecordType = "SRV"
	RecordALL   RecordType = "ALL"
)

// DNSRecord is one record variant. Every concrete record carries its type
// in the "type" JSON field so consumers can switch on it.
type DNSRecord interface {
	RecordType() RecordType
}

// ValueRecord covers A, AAAA, CNAME, NS and TXT answers.
type ValueRecord struct {
	Type  RecordType `json:"type"`
	Value string     `json:"value"`
}

// RecordType implements DNSRecord.
func (r ValueRecord) RecordType() RecordType { return r.Type }

// MXRecord is a mail exchanger answer.
type MXRecord struct {
	Type     RecordType `json:"type"`
	Priority uint16     `json:"priority"`
	Value    string     `json:"value"`
}

// RecordType implements DNSRecord.
func (r MXRecord) RecordType() RecordType { return RecordMX }

// SRVRecord is a service locator answer.
type SRVRecord struct {
	Type     RecordType `json:"type"`
	Priority uint16     `json:"priority"`
	Weight   uint16     `json:"weight"`
	Port     uint16     `json:"port"`
	Value    string     `json:"value"`
}

// RecordType implements DNSRecord.
func (r SRVRecord) RecordType() RecordType { return RecordSRV }

// SOARecord is a start-of-authority answer.
type SOARecord struct {
	Type       RecordType `json:"type"`
	NSName     string     `json:"nsname"`
	Hostmaster string     `json:"hostmaster"`
	Serial     uint32     `json:"serial"`
	Refresh    uint32     `json:"refresh"`
	Retry      uint32     `json:"retry"`
	Expire     uint32     `json:"expire"`
	MinTTL     uint32     `json:"minttl"`
}

// RecordType implements DNSRecord.
func (r SOARecord) RecordType() RecordType { return RecordSOA }

// NewValueRecord builds a single-value record of the given type.
func NewValueRecord(t RecordType, value string) ValueRecord {
	return ValueRecord{Type: t, Value: value}
}
