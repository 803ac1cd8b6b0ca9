// Package document turns raw assignment documents read from the store into resolver
// definitions. Documents are schema-checked here so nothing downstream has to guess.
package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/observability"
	"github.com/noah-isme/lynx-api/internal/resolver"
)

//go:embed schema/assignment.schema.json
var assignmentSchema string

// DefaultAttachmentName labels legacy single-file attachments without a name.
const DefaultAttachmentName = "Lampiran"

const (
	SourceModule  = "module"
	SourceChapter = "chapter"
)

// ErrInvalidDocument wraps every schema or shape failure.
var ErrInvalidDocument = errors.New("invalid assignment document")

// Rejection records a document that could not be decoded.
type Rejection struct {
	Source string
	ID     string
	Err    error
}

// Decoder validates and decodes raw assignment documents.
type Decoder struct {
	schema *jsonschema.Schema
	loc    *time.Location
	logger zerolog.Logger
}

// NewDecoder compiles the embedded schema. Zone-less dates are read in loc.
func NewDecoder(loc *time.Location, logger zerolog.Logger) (*Decoder, error) {
	schema, err := jsonschema.CompileString("assignment.schema.json", assignmentSchema)
	if err != nil {
		return nil, fmt.Errorf("compile assignment schema: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Decoder{
		schema: schema,
		loc:    loc,
		logger: logger.With().Str("component", "assignment_document").Logger(),
	}, nil
}

type rawAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type rawAssignment struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Instructions string          `json:"instructions"`
	Status       string          `json:"status"`
	Deadline     interface{}     `json:"deadline"`
	DueDate      interface{}     `json:"dueDate"`
	PublishedAt  interface{}     `json:"publishedAt"`
	CreatedAt    interface{}     `json:"createdAt"`
	FileURL      string          `json:"fileUrl"`
	FileName     string          `json:"fileName"`
	Attachments  []rawAttachment `json:"attachments"`
}

type rawSubchapter struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Assignments []map[string]interface{} `json:"assignments"`
}

// Definition validates one raw document belonging to classID.
func (d *Decoder) Definition(classID string, raw map[string]interface{}) (resolver.AssignmentDefinition, error) {
	payload, err := json.Marshal(raw)
	if err != nil {
		return resolver.AssignmentDefinition{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var generic interface{}
	if err := decoder.Decode(&generic); err != nil {
		return resolver.AssignmentDefinition{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := d.schema.Validate(generic); err != nil {
		return resolver.AssignmentDefinition{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	decoder = json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	var doc rawAssignment
	if err := decoder.Decode(&doc); err != nil {
		return resolver.AssignmentDefinition{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	// The alias fields apply whenever the primary field yields no instant.
	deadline := d.normalizer("deadline", doc.ID).InstantPtr(doc.Deadline)
	if deadline == nil {
		deadline = d.normalizer("due_date", doc.ID).InstantPtr(doc.DueDate)
	}
	published := d.normalizer("published_at", doc.ID).InstantPtr(doc.PublishedAt)
	if published == nil {
		published = d.normalizer("created_at", doc.ID).InstantPtr(doc.CreatedAt)
	}

	instructions := strings.TrimSpace(doc.Description)
	if instructions == "" {
		instructions = strings.TrimSpace(doc.Instructions)
	}

	return resolver.AssignmentDefinition{
		ID:           doc.ID,
		ClassID:      classID,
		Title:        strings.TrimSpace(doc.Title),
		Instructions: instructions,
		Deadline:     deadline,
		PublishedAt:  published,
		Attachments:  attachments(doc),
		Visibility:   strings.TrimSpace(doc.Status),
	}, nil
}

// FromModules decodes assignment modules. Non-assignment modules are skipped; the
// module columns fill in id, title and status when the payload omits them.
func (d *Decoder) FromModules(modules []models.Module) ([]resolver.AssignmentDefinition, []Rejection) {
	definitions := make([]resolver.AssignmentDefinition, 0, len(modules))
	var rejections []Rejection

	for _, module := range modules {
		if !strings.EqualFold(module.Type, models.ModuleTypeAssignment) {
			continue
		}

		raw := make(map[string]interface{}, len(module.Payload)+3)
		for key, value := range module.Payload {
			raw[key] = value
		}
		setDefault(raw, "id", module.ID)
		setDefault(raw, "title", module.Title)
		if module.Status != "" {
			setDefault(raw, "status", module.Status)
		}

		def, err := d.Definition(module.ClassID, raw)
		if err != nil {
			rejections = append(rejections, d.reject(SourceModule, module.ID, err))
			continue
		}
		definitions = append(definitions, def)
	}

	return definitions, rejections
}

// FromChapters flattens chapters -> subchapters -> assignments.
func (d *Decoder) FromChapters(chapters []models.Chapter) ([]resolver.AssignmentDefinition, []Rejection) {
	definitions := make([]resolver.AssignmentDefinition, 0)
	var rejections []Rejection

	for _, chapter := range chapters {
		if len(chapter.Subchapters) == 0 {
			continue
		}

		var subchapters []rawSubchapter
		if err := json.Unmarshal(chapter.Subchapters, &subchapters); err != nil {
			rejections = append(rejections, d.reject(SourceChapter, chapter.ID, fmt.Errorf("%w: %v", ErrInvalidDocument, err)))
			continue
		}

		for _, sub := range subchapters {
			for _, raw := range sub.Assignments {
				def, err := d.Definition(chapter.ClassID, raw)
				if err != nil {
					id, _ := raw["id"].(string)
					rejections = append(rejections, d.reject(SourceChapter, chapter.ID+"/"+id, err))
					continue
				}
				definitions = append(definitions, def)
			}
		}
	}

	return definitions, rejections
}

func (d *Decoder) normalizer(field, id string) resolver.Normalizer {
	return resolver.NewNormalizer(d.loc, func(value interface{}) {
		observability.ResolverInvalidDates().WithLabelValues(field).Inc()
		d.logger.Warn().
			Str("assignment_id", id).
			Str("field", field).
			Interface("value", value).
			Msg("unparseable date treated as absent")
	})
}

func (d *Decoder) reject(source, id string, err error) Rejection {
	observability.ResolverRejectedDocuments().WithLabelValues(source).Inc()
	d.logger.Warn().Err(err).Str("source", source).Str("document_id", id).Msg("assignment document rejected")
	return Rejection{Source: source, ID: id, Err: err}
}

func attachments(doc rawAssignment) []resolver.Attachment {
	out := make([]resolver.Attachment, 0, len(doc.Attachments)+1)
	for _, item := range doc.Attachments {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = DefaultAttachmentName
		}
		out = append(out, resolver.Attachment{Name: name, URL: strings.TrimSpace(item.URL)})
	}

	if url := strings.TrimSpace(doc.FileURL); url != "" {
		name := strings.TrimSpace(doc.FileName)
		if name == "" {
			name = DefaultAttachmentName
		}
		out = append(out, resolver.Attachment{Name: name, URL: url})
	}

	return out
}

func setDefault(raw map[string]interface{}, key, value string) {
	if value == "" {
		return
	}
	if existing, ok := raw[key]; ok && existing != nil && existing != "" {
		return
	}
	raw[key] = value
}
