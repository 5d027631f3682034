package client

import (
	"html/template"
	"io"
	"time"

	"example.com/clerk-notes/internal/notes"
	"example.com/clerk-notes/internal/stringsx"
)

const previewRunes = 150

var cardsTmpl = template.Must(template.New("notes").Parse(`{{if not .}}<div class="empty-state">
  <p>No notes yet. Create your first note!</p>
</div>
{{else}}{{range .}}<div class="note-card" data-note-id="{{.ID}}">
  <h3 class="note-card-title">{{.Title}}</h3>
  <p class="note-card-content">{{.Preview}}</p>
  <div class="note-card-meta">
    <span>{{.Created}}</span>
    <div class="note-card-actions">
      <button class="btn btn-small btn-primary edit-note" data-note-id="{{.ID}}">Edit</button>
      <button class="btn btn-small btn-danger delete-note" data-note-id="{{.ID}}">Delete</button>
    </div>
  </div>
</div>
{{end}}{{end}}`))

type card struct {
	ID      int64
	Title   string
	Preview string
	Created string
}

// RenderNotes writes one HTML card per note. Titles and content are
// escaped by html/template.
func RenderNotes(w io.Writer, items []notes.Note) error {
	cards := make([]card, 0, len(items))
	for _, n := range items {
		cards = append(cards, card{
			ID:      n.ID,
			Title:   n.Title,
			Preview: stringsx.Preview(n.Content, previewRunes),
			Created: formatDate(n.CreatedAt),
		})
	}
	return cardsTmpl.Execute(w, cards)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}
