package notification

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/upb/ciw-intake/models"
	"github.com/upb/ciw-intake/utils"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var kinds = []models.NotificationKind{
	models.NotificationWrongVersion,
	models.NotificationPasswordProtected,
	models.NotificationDuplicateUser,
	models.NotificationARRA,
	models.NotificationValidationErrors,
	models.NotificationSponsorshipInitiated,
	models.NotificationProcessingError,
}

// Renderer turns a Notification into an outbox message
type Renderer struct {
	templates      map[models.NotificationKind]*template.Template
	from           string
	supportAddress string
}

// view is the data every template sees
type view struct {
	Greeting string
	FileName string
	Employee string
	PersonID int64
	Support  string
	Sections []sectionView
}

type sectionView struct {
	Name     string
	Messages []string
}

// NewRenderer parses one template per notification kind
func NewRenderer(from, supportAddress string) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[models.NotificationKind]*template.Template, len(kinds)),
		from:           from,
		supportAddress: supportAddress,
	}
	for _, kind := range kinds {
		tmpl, err := template.New(string(kind)).ParseFS(templateFS,
			"templates/common.tmpl",
			"templates/"+string(kind)+".tmpl",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		r.templates[kind] = tmpl
	}
	return r, nil
}

// Render builds the outbox message for n
func (r *Renderer) Render(n models.Notification) (*models.OutboxMessage, error) {
	tmpl, ok := r.templates[n.Kind]
	if !ok {
		return nil, fmt.Errorf("no template for notification kind %q", n.Kind)
	}

	data := r.view(n)

	var subject, body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return nil, fmt.Errorf("failed to render %s subject: %w", n.Kind, err)
	}
	if err := tmpl.ExecuteTemplate(&body, "body", data); err != nil {
		return nil, fmt.Errorf("failed to render %s body: %w", n.Kind, err)
	}

	msg := models.NewOutboxMessage(n.Kind, n.FileID, r.from, r.recipients(n), subject.String(), body.String())
	msg.ID = n.ID
	return msg, nil
}

// recipients sends to the submitter when it is an address and to support
// otherwise. Processing errors always copy support.
func (r *Renderer) recipients(n models.Notification) []string {
	to := []string{r.supportAddress}
	if utils.ValidateEmail(n.Submitter) == nil {
		to = []string{models.NormalizeEmail(n.Submitter)}
		if n.Kind == models.NotificationProcessingError && !strings.EqualFold(n.Submitter, r.supportAddress) {
			to = append(to, r.supportAddress)
		}
	}
	return to
}

func (r *Renderer) view(n models.Notification) view {
	v := view{
		Greeting: "Hello",
		FileName: n.FileName,
		PersonID: n.PersonID,
		Support:  r.supportAddress,
	}
	if name := nameFromAddress(n.Submitter); name != "" {
		v.Greeting = "Hello " + name
	}
	if n.Record != nil {
		full := strings.TrimSpace(n.Record.Get(models.FirstName) + " " + n.Record.Get(models.LastName))
		v.Employee = titleCase(full)
	}
	if n.Validation != nil {
		for _, s := range n.Validation.Sections {
			v.Sections = append(v.Sections, sectionView{Name: s.Name, Messages: s.Messages()})
		}
	}
	return v
}

// nameFromAddress turns "jane.doe@gsa.gov" into "Jane Doe"
func nameFromAddress(addr string) string {
	local, _, ok := strings.Cut(addr, "@")
	if !ok {
		return ""
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	return titleCase(strings.Join(strings.Fields(local), " "))
}

// titleCase builds a Caser per call; a Caser must not be shared between
// goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
