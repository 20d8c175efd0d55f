// Package templates holds the HTML components served to the browser UI.
// Components are plain templ.ComponentFunc values so they can be rendered
// into full pages or returned as HTMX fragments.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/a-h/templ"
)

// StatusMessage renders the status line shown under the upload forms.
// The severity selects the CSS class: error, processing or success.
func StatusMessage(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		severity := msg.Severity
		if severity == "" {
			severity = core.SeverityError
		}

		if _, err := fmt.Fprintf(w, `<div id="status" class="status status-%s" role="status">`,
			templ.EscapeString(severity)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<p class="status-message">%s</p>`, templ.EscapeString(msg.Message)); err != nil {
			return err
		}
		if msg.Action != "" {
			if _, err := fmt.Fprintf(w, `<p class="status-action">%s</p>`, templ.EscapeString(msg.Action)); err != nil {
				return err
			}
		}
		if msg.Code != "" {
			if _, err := fmt.Fprintf(w, `<p class="status-code">Code: %s</p>`, templ.EscapeString(msg.Code)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}
