package cv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPublished Status = "Published"
	StatusArchived  Status = "Archived"
)

var legacyStatuses = map[string]Status{
	"brouillon": StatusDraft,
	"publié":    StatusPublished,
	"publie":    StatusPublished,
	"archivé":   StatusArchived,
	"archive":   StatusArchived,
	"draft":     StatusDraft,
	"published": StatusPublished,
	"archived":  StatusArchived,
}

// NormalizeStatus maps case variants and the original French labels onto the canonical set.
func NormalizeStatus(s Status) (Status, bool) {
	if s == "" {
		return "", true
	}
	canonical, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(string(s)))]
	return canonical, ok
}

type PersonalInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Objective string `json:"objective"`
}

type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

type Education struct {
	ID     string `json:"id"`
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

// Document is a résumé owned by exactly one user. Fields the API does not know
// about are carried in Extra so stored documents round-trip unchanged.
type Document struct {
	ID               string       `json:"id"`
	UserID           string       `json:"userId"`
	Name             string       `json:"name"`
	Template         string       `json:"template"`
	PersonalInfo     PersonalInfo `json:"personalInfo"`
	Experience       []Experience `json:"experience"`
	Education        []Education  `json:"education"`
	Skills           []string     `json:"skills"`
	Languages        []string     `json:"languages"`
	Status           Status       `json:"status"`
	IsPublic         bool         `json:"isPublic"`
	ShareID          string       `json:"shareId,omitempty"`
	SharedAt         *time.Time   `json:"sharedAt,omitempty"`
	PreviousShareIDs []string     `json:"previousShareIds,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Fields owned by the server; client payloads cannot set them.
var serverOwnedFields = map[string]struct{}{
	"id":               {},
	"userId":           {},
	"createdAt":        {},
	"updatedAt":        {},
	"shareId":          {},
	"sharedAt":         {},
	"previousShareIds": {},
}

var knownFields = map[string]struct{}{
	"id": {}, "userId": {}, "name": {}, "template": {}, "personalInfo": {},
	"experience": {}, "education": {}, "skills": {}, "languages": {}, "status": {},
	"isPublic": {}, "shareId": {}, "sharedAt": {}, "previousShareIds": {},
	"createdAt": {}, "updatedAt": {},
}

type documentAlias Document

func (d Document) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(documentAlias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return base, nil
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, known := knownFields[k]; known {
			continue
		}
		fields[k] = v
	}
	return json.Marshal(fields)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var alias documentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = Document(alias)
	d.Extra = nil
	for k, v := range fields {
		if _, known := knownFields[k]; known {
			continue
		}
		if d.Extra == nil {
			d.Extra = map[string]json.RawMessage{}
		}
		d.Extra[k] = v
	}
	return nil
}

// Patch is a client payload: top-level JSON fields, applied with shallow merge semantics.
type Patch map[string]json.RawMessage

// ParsePatch decodes a JSON object body. Arrays, scalars and null are rejected.
func ParsePatch(body []byte) (Patch, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Patch{}, nil
	}
	if trimmed[0] != '{' {
		return nil, errors.New("document payload must be a JSON object")
	}
	var p Patch
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("malformed document payload: %w", err)
	}
	if p == nil {
		p = Patch{}
	}
	return p, nil
}

// WithoutServerFields drops the keys the server assigns itself.
func (p Patch) WithoutServerFields() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		if _, owned := serverOwnedFields[k]; owned {
			continue
		}
		out[k] = v
	}
	return out
}

// UnknownFields lists payload keys that are not part of the document schema, sorted.
func (p Patch) UnknownFields() []string {
	var out []string
	for k := range p {
		if _, known := knownFields[k]; !known {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Merge overlays the patch onto the document: supplied top-level fields replace
// the stored ones, everything else is kept.
func Merge(existing Document, patch Patch) (Document, error) {
	base, err := json.Marshal(existing)
	if err != nil {
		return Document{}, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return Document{}, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Document{}, err
	}
	var out Document
	if err := json.Unmarshal(merged, &out); err != nil {
		return Document{}, fmt.Errorf("invalid field type: %w", err)
	}
	return out, nil
}

var (
	ErrCVNotFound    = errors.New("cv not found")
	ErrInvalidStatus = errors.New("status must be one of Draft, Published, Archived")
)

// Normalize canonicalises status labels, removes duplicate skills keeping the first
// occurrence and gives every experience and education entry an id.
func (d *Document) Normalize() error {
	status, ok := NormalizeStatus(d.Status)
	if !ok {
		return ErrInvalidStatus
	}
	d.Status = status

	if len(d.Skills) > 0 {
		seen := make(map[string]struct{}, len(d.Skills))
		unique := d.Skills[:0]
		for _, s := range d.Skills {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			unique = append(unique, s)
		}
		d.Skills = unique
	}

	for i := range d.Experience {
		if d.Experience[i].ID == "" {
			d.Experience[i].ID = uuid.NewString()
		}
	}
	for i := range d.Education {
		if d.Education[i].ID == "" {
			d.Education[i].ID = uuid.NewString()
		}
	}

	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Languages == nil {
		d.Languages = []string{}
	}
	return nil
}

// ReferencesShare reports whether shareID is the current share of the document,
// or one of the retained previous ones.
func (d *Document) ReferencesShare(shareID string) bool {
	if shareID == "" {
		return false
	}
	if d.ShareID == shareID {
		return true
	}
	for _, prev := range d.PreviousShareIDs {
		if prev == shareID {
			return true
		}
	}
	return false
}

// AllShareIDs returns the current share id followed by retained ones.
func (d *Document) AllShareIDs() []string {
	var ids []string
	if d.ShareID != "" {
		ids = append(ids, d.ShareID)
	}
	return append(ids, d.PreviousShareIDs...)
}

type Repository interface {
	Save(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, ownerID, id string) (*Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}
