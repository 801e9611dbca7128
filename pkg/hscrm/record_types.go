package hscrm

import (
	"fmt"
	"strings"
)

// RecordType is the category of a CRM record.
type RecordType string

// Supported record types.
const (
	RecordTypeContact RecordType = "contact"
	RecordTypeCompany RecordType = "company"
	RecordTypeDeal    RecordType = "deal"
	RecordTypeTicket  RecordType = "ticket"
	RecordTypeEmail   RecordType = "email"
	RecordTypeOwner   RecordType = "owner"
)

// Operation is something a caller can do with records of a type.
type Operation string

// Operations a record type may support.
const (
	OperationCreate    Operation = "create"
	OperationSearch    Operation = "search"
	OperationUpdate    Operation = "update"
	OperationDelete    Operation = "delete"
	OperationAssociate Operation = "associate"
)

// SearchMode describes how records of a type are enumerated.
type SearchMode string

const (
	// SearchModeNone means the type cannot be searched.
	SearchModeNone SearchMode = ""
	// SearchModeDirect returns records and cursor in a single search call.
	SearchModeDirect SearchMode = "direct"
	// SearchModeTwoPhase searches for ids and then batch-reads the records.
	SearchModeTwoPhase SearchMode = "two-phase"
	// SearchModePageOnly lists pages without search filters.
	SearchModePageOnly SearchMode = "page-only"
)

// DeleteMode describes what a delete does for a type.
type DeleteMode string

const (
	DeleteModeNone    DeleteMode = ""
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeGDPR    DeleteMode = "gdpr-purge"
)

// Capabilities is the set of operations a record type supports.
type Capabilities struct {
	Create    bool
	Search    SearchMode
	Update    bool
	Delete    DeleteMode
	Associate bool
}

var capabilityTable = map[RecordType]Capabilities{
	RecordTypeContact: {Create: true, Search: SearchModeDirect, Update: true, Delete: DeleteModeGDPR, Associate: true},
	RecordTypeCompany: {Create: true, Search: SearchModeDirect, Update: true, Delete: DeleteModeArchive, Associate: true},
	RecordTypeDeal:    {Create: true, Search: SearchModeTwoPhase, Update: true, Delete: DeleteModeArchive, Associate: true},
	RecordTypeTicket:  {Create: true, Search: SearchModeDirect, Delete: DeleteModeArchive},
	RecordTypeEmail:   {Create: true, Search: SearchModeDirect, Delete: DeleteModeArchive},
	RecordTypeOwner:   {Search: SearchModePageOnly},
}

// RecordTypes returns every known record type in a stable order.
func RecordTypes() []RecordType {
	return []RecordType{
		RecordTypeContact,
		RecordTypeCompany,
		RecordTypeDeal,
		RecordTypeTicket,
		RecordTypeEmail,
		RecordTypeOwner,
	}
}

// ParseRecordType converts a user supplied name ("contacts", "Deal") into a
// RecordType.
func ParseRecordType(name string) (RecordType, error) {
	normalized := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s")
	if normalized == "companie" {
		normalized = "company"
	}

	recordType := RecordType(normalized)
	if _, ok := capabilityTable[recordType]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRecordType, name)
	}

	return recordType, nil
}

// Capabilities returns the operations supported by the record type.
func (t RecordType) Capabilities() Capabilities {
	return capabilityTable[t]
}

// Supports reports whether the record type supports the operation.
func (t RecordType) Supports(op Operation) bool {
	caps, ok := capabilityTable[t]
	if !ok {
		return false
	}

	switch op {
	case OperationCreate:
		return caps.Create
	case OperationSearch:
		return caps.Search != SearchModeNone
	case OperationUpdate:
		return caps.Update
	case OperationDelete:
		return caps.Delete != DeleteModeNone
	case OperationAssociate:
		return caps.Associate
	default:
		return false
	}
}

// Require returns ErrUnsupportedOperation when the record type does not
// support the operation.
func (t RecordType) Require(op Operation) error {
	if !t.Supports(op) {
		return fmt.Errorf("%w: %s does not support %s", ErrUnsupportedOperation, t, op)
	}

	return nil
}

// ObjectPath returns the plural object name used in CRM API paths.
func (t RecordType) ObjectPath() string {
	switch t {
	case RecordTypeCompany:
		return "companies"
	default:
		return string(t) + "s"
	}
}

// String implements fmt.Stringer.
func (t RecordType) String() string {
	return string(t)
}

var associationTypeCodes = map[[2]RecordType]int{
	{RecordTypeContact, RecordTypeCompany}: 1,
	{RecordTypeCompany, RecordTypeContact}: 2,
	{RecordTypeDeal, RecordTypeContact}:    3,
	{RecordTypeContact, RecordTypeDeal}:    4,
	{RecordTypeDeal, RecordTypeCompany}:    5,
	{RecordTypeCompany, RecordTypeDeal}:    6,
}

// AssociationTypeCode returns the association type code for the ordered
// pair. The second result is false when the pair has no code.
func AssociationTypeCode(from, to RecordType) (int, bool) {
	code, ok := associationTypeCodes[[2]RecordType{from, to}]

	return code, ok
}
